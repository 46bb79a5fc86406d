package dto

type PlaceBetRequest struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind"`   // "single" | "patti"
	Value  string `json:"value"`  // texto numérico; patti aceita zeros à esquerda ("005")
	Amount int64  `json:"amount"` // pontos, inteiro
}

type DraftKindRequest struct {
	Kind string `json:"kind"`
}

type DraftValueRequest struct {
	Value string `json:"value"`
}

type DraftAmountRequest struct {
	Amount int64 `json:"amount"`
}

type DeclareResultRequest struct {
	RoundID int64  `json:"round_id,omitempty"` // opcional: vazio apura a última fechada
	Patti   string `json:"patti"`              // "000".."999"
}

type WalletCreditRequest struct {
	UserID      int64  `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

type WalletDebitRequest struct {
	UserID int64 `json:"userId"`
	Amount int64 `json:"amount"`
}
