package dto

import "time"

type RoundResponse struct {
	RoundID int64     `json:"round_id"`
	Date    string    `json:"date"`
	Seq     int       `json:"seq"`
	Status  string    `json:"status"`
	CloseAt time.Time `json:"close_at"`
	Patti   *string   `json:"patti,omitempty"`  // "578", com zeros à esquerda
	Single  *int      `json:"single,omitempty"` // dígito derivado
}

type BetResponse struct {
	BetID     int64     `json:"bet_id"`
	RoundID   int64     `json:"round_id"`
	Kind      string    `json:"kind"`
	Value     string    `json:"value"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type WalletResponse struct {
	UserID  int64 `json:"userId"`
	Balance int64 `json:"balance"`
}

type DraftResponse struct {
	UserID      int64  `json:"userId"`
	Kind        string `json:"kind,omitempty"`
	Value       *int   `json:"value,omitempty"`
	Amount      *int64 `json:"amount,omitempty"`
	Confirmable bool   `json:"confirmable"`
}

type SettlementResponse struct {
	RoundID     int64  `json:"round_id"`
	Seq         int    `json:"seq"`
	Patti       string `json:"patti"`
	Single      int    `json:"single"`
	Bets        int    `json:"bets"`
	Winners     int    `json:"winners"`
	TotalPayout int64  `json:"total_payout"`
	NextRoundID int64  `json:"next_round_id,omitempty"`
}

type StatsResponse struct {
	TotalUsers  int64 `json:"total_users"`
	TotalBets   int64 `json:"total_bets"`
	RoundsToday int   `json:"rounds_today"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
