package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	ev "github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// Textos de broadcast enviados ao webhook de notificação. O webhook decide
// para onde repassar (canal público, DM do ganhador).

func RoundOpenedText(e ev.RoundOpened) string {
	return fmt.Sprintf("🎲 Baaji #%d aberta! Apostas até %s.", e.Seq, e.ClosesAt)
}

func RoundClosedText(e ev.RoundClosed) string {
	if e.Forced {
		return fmt.Sprintf("🔒 Baaji #%d encerrada pelo operador. Aguardando resultado.", e.Seq)
	}
	return fmt.Sprintf("🔒 Baaji #%d encerrada. Aguardando resultado.", e.Seq)
}

func ResultDeclaredText(e ev.ResultDeclared) string {
	return fmt.Sprintf("📢 Resultado da baaji #%d (%s): patti %s, single %d. Ganhadores: %d, pago: %d.",
		e.Seq, e.Date, game.FormatPatti(e.Patti), e.Single, e.Winners, e.TotalPayout)
}

func PayoutCreditedText(e ev.PayoutCredited) string {
	return fmt.Sprintf("🏆 Parabéns! Você ganhou %d na baaji #%d. Saldo creditado.", e.Amount, e.Seq)
}

// Render adapters: um por tópico, plugados no Consume pelo worker.

func RenderRoundOpened(value []byte) (Message, error) {
	var e ev.RoundOpened
	if err := json.Unmarshal(value, &e); err != nil {
		return Message{}, err
	}
	return Message{Text: RoundOpenedText(e)}, nil
}

func RenderRoundClosed(value []byte) (Message, error) {
	var e ev.RoundClosed
	if err := json.Unmarshal(value, &e); err != nil {
		return Message{}, err
	}
	return Message{Text: RoundClosedText(e)}, nil
}

func RenderResultDeclared(value []byte) (Message, error) {
	var e ev.ResultDeclared
	if err := json.Unmarshal(value, &e); err != nil {
		return Message{}, err
	}
	return Message{Text: ResultDeclaredText(e)}, nil
}

func RenderPayoutCredited(value []byte) (Message, error) {
	var e ev.PayoutCredited
	if err := json.Unmarshal(value, &e); err != nil {
		return Message{}, err
	}
	return Message{UserID: e.UserID, Text: PayoutCreditedText(e)}, nil
}
