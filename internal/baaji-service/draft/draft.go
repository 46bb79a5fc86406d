package draft

import (
	"errors"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

var (
	ErrNoDraft    = errors.New("no draft in progress")
	ErrIncomplete = errors.New("draft incomplete")
)

// Draft é a seleção em andamento de um usuário entre a navegação do menu
// e a confirmação final. Efêmero: vive no Redis com TTL, nada é debitado
// até a confirmação.
//
// Estágios: kind -> value -> amount -> confirmável. Cada SetX valida o
// estágio anterior e descarta os posteriores.
type Draft struct {
	UserID int64  `json:"user_id"`
	Kind   string `json:"kind,omitempty"`
	Value  *int   `json:"value,omitempty"`
	Amount *int64 `json:"amount,omitempty"`
}

// SetKind inicia (ou reinicia) o rascunho com o tipo de aposta
func (d *Draft) SetKind(raw string) error {
	kind, err := game.ParseKind(raw)
	if err != nil {
		return err
	}
	d.Kind = string(kind)
	d.Value = nil
	d.Amount = nil
	return nil
}

// SetValue grava o valor apostado; exige tipo já escolhido
func (d *Draft) SetValue(raw string) error {
	if d.Kind == "" {
		return ErrIncomplete
	}
	v, err := game.ParseValue(game.BetKind(d.Kind), raw)
	if err != nil {
		return err
	}
	d.Value = &v
	d.Amount = nil
	return nil
}

// SetAmount grava a quantia; exige valor já escolhido
func (d *Draft) SetAmount(rules game.Rules, amount int64) error {
	if d.Kind == "" || d.Value == nil {
		return ErrIncomplete
	}
	if err := rules.ValidateAmount(amount); err != nil {
		return err
	}
	d.Amount = &amount
	return nil
}

// Confirmable indica se o rascunho está pronto para virar aposta
func (d *Draft) Confirmable() bool {
	return d.Kind != "" && d.Value != nil && d.Amount != nil
}
