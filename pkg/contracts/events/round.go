package events

// RoundOpened é publicado quando uma nova baaji abre para apostas
type RoundOpened struct {
	RoundID  int64  `json:"round_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Seq      int    `json:"seq"`  // 1..8
	ClosesAt string `json:"closes_at"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// RoundClosed é publicado quando uma baaji fecha (timer ou operador)
// Serve de alerta ao operador: a rodada aguarda resultado
type RoundClosed struct {
	RoundID  int64  `json:"round_id"`
	Date     string `json:"date"`
	Seq      int    `json:"seq"`
	Forced   bool   `json:"forced"` // true quando fechada manualmente
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// ResultDeclared é o broadcast do resultado da rodada
type ResultDeclared struct {
	RoundID     int64  `json:"round_id"`
	Date        string `json:"date"`
	Seq         int    `json:"seq"`
	Patti       int    `json:"patti"`  // 0..999
	Single      int    `json:"single"` // soma dos dígitos mod 10
	Winners     int    `json:"winners"`
	TotalPayout int64  `json:"total_payout"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
