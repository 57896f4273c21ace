package intake

// State identifica el paso de la conversación. Cada estado nombra el handler
// que consume el próximo evento: en AwaitOutcome llega el ticker elegido y se
// pregunta el resultado.
type State int

const (
	Start State = iota
	AwaitOutcome
	AwaitSide
	AwaitStrategy
	AwaitRiskReward
	AwaitPnl
	AwaitDate
	AwaitTime
	AwaitPhoto
	Save
	Terminal
)

var stateNames = [...]string{
	Start:           "start",
	AwaitOutcome:    "await_outcome",
	AwaitSide:       "await_side",
	AwaitStrategy:   "await_strategy",
	AwaitRiskReward: "await_risk_reward",
	AwaitPnl:        "await_pnl",
	AwaitDate:       "await_date",
	AwaitTime:       "await_time",
	AwaitPhoto:      "await_photo",
	Save:            "save",
	Terminal:        "terminal",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
