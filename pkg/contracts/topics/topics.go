package topics

const (
	// Rounds
	RoundSettled = "round_settled"
)
