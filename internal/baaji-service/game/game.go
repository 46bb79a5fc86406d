package game

import (
	"errors"
	"strconv"
)

// BetKind identifica o tipo de aposta
type BetKind string

const (
	KindSingle BetKind = "single" // dígito único 0-9, paga 9x
	KindPatti  BetKind = "patti"  // combinação de 3 dígitos 000-999, paga 90x
)

// Erros de validação e de estado do jogo. O handler HTTP e os repositórios
// devolvem estes sentinelas para o chamador decidir o que fazer.
var (
	ErrInvalidValue       = errors.New("invalid bet value for kind")
	ErrInvalidAmount      = errors.New("bet amount out of bounds")
	ErrInvalidCombination = errors.New("combination must be between 000 and 999")

	ErrNoActiveRound    = errors.New("no open baaji")
	ErrRoundNotFound    = errors.New("baaji not found")
	ErrBetLimitExceeded = errors.New("max bets per baaji reached")
	ErrRoundNotClosed   = errors.New("baaji is not closed")
	ErrAlreadyResulted  = errors.New("baaji already resulted")
	ErrRoundNotResulted = errors.New("baaji is not resulted")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyRedeemed   = errors.New("already redeemed today")
)

// Rules agrupa os limites e multiplicadores fixos do jogo
type Rules struct {
	MinBet           int64
	MaxBet           int64
	MaxBetsPerRound  int
	MinTopUp         int64
	SingleMultiplier int64
	PattiMultiplier  int64
}

// DefaultRules devolve os valores usados em produção
func DefaultRules() Rules {
	return Rules{
		MinBet:           5,
		MaxBet:           5000,
		MaxBetsPerRound:  10,
		MinTopUp:         50,
		SingleMultiplier: 9,
		PattiMultiplier:  90,
	}
}

// ParseKind valida o tipo de aposta vindo da API
func ParseKind(s string) (BetKind, error) {
	switch BetKind(s) {
	case KindSingle:
		return KindSingle, nil
	case KindPatti:
		return KindPatti, nil
	}
	return "", ErrInvalidValue
}

// ParseValue valida o valor apostado dentro do domínio do tipo.
// Aceita texto numérico com zeros à esquerda no caso da patti ("005").
func ParseValue(kind BetKind, raw string) (int, error) {
	if raw == "" || len(raw) > 3 {
		return 0, ErrInvalidValue
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, ErrInvalidValue
		}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidValue
	}

	switch kind {
	case KindSingle:
		if len(raw) != 1 || v < 0 || v > 9 {
			return 0, ErrInvalidValue
		}
	case KindPatti:
		if v < 0 || v > 999 {
			return 0, ErrInvalidValue
		}
	default:
		return 0, ErrInvalidValue
	}
	return v, nil
}

// ValidateAmount aplica os limites MIN_BET/MAX_BET
func (r Rules) ValidateAmount(amount int64) error {
	if amount < r.MinBet || amount > r.MaxBet {
		return ErrInvalidAmount
	}
	return nil
}

// ValidCombination checa o domínio do resultado declarado pelo operador
func ValidCombination(patti int) bool {
	return patti >= 0 && patti <= 999
}

// DeriveSingle calcula o resultado de dígito único: soma dos três dígitos
// decimais da combinação (com zeros à esquerda) módulo 10.
// Ex.: 578 -> 5+7+8=20 -> 0; 005 -> 5.
func DeriveSingle(patti int) int {
	sum := patti/100 + (patti/10)%10 + patti%10
	return sum % 10
}

// Payout calcula o prêmio de uma aposta dado o resultado da rodada.
// Single paga 9x no acerto do dígito derivado; patti paga 90x no acerto
// exato da combinação. Sempre inteiro exato, sem arredondamento.
func (r Rules) Payout(kind BetKind, value int, amount int64, patti int, single int) int64 {
	switch kind {
	case KindSingle:
		if value == single {
			return amount * r.SingleMultiplier
		}
	case KindPatti:
		if value == patti {
			return amount * r.PattiMultiplier
		}
	}
	return 0
}

// Wager é a projeção mínima de uma aposta usada na apuração
type Wager struct {
	UserID int64
	Kind   BetKind
	Value  int
	Amount int64
}

// AggregateWinners apura todas as apostas de uma rodada e devolve o total
// ganho por usuário. Um usuário com várias apostas vencedoras recebe um
// único crédito agregado.
func (r Rules) AggregateWinners(wagers []Wager, patti int) map[int64]int64 {
	single := DeriveSingle(patti)
	winners := make(map[int64]int64)
	for _, w := range wagers {
		if win := r.Payout(w.Kind, w.Value, w.Amount, patti, single); win > 0 {
			winners[w.UserID] += win
		}
	}
	return winners
}

// FormatPatti devolve a combinação com zeros à esquerda ("005")
func FormatPatti(patti int) string {
	s := strconv.Itoa(patti)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
