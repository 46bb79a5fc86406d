package topics

const (
	// Ciclo de vida das baajis
	RoundOpened = "round_opened"
	RoundClosed = "round_closed"

	// Resultado e pagamentos
	ResultDeclared = "result_declared"
	PayoutCredited = "payout_credited"
)
