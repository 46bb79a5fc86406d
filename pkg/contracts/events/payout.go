package events

// PayoutCredited é a notificação individual de cada ganhador
type PayoutCredited struct {
	RoundID  int64 `json:"round_id"`
	Seq      int   `json:"seq"`
	UserID   int64 `json:"user_id"`
	Amount   int64 `json:"amount"`
	TsUnixMs int64 `json:"ts_unix_ms"`
}
