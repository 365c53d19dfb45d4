package types

// Status is the authoritative state of one checkout attempt. It is owned
// by the workflow; everything else reads it to decide what is offered.
type Status string

const (
	// StatusInitial: no transaction submitted yet, purchase available.
	StatusInitial Status = "INITIAL"
	// StatusSubmitted: transaction broadcast, waiting for finality.
	StatusSubmitted Status = "SUBMITTED"
	// StatusPaid: a finalized transaction carrying the order reference was
	// observed on the ledger. Terminal.
	StatusPaid Status = "PAID"
	// StatusExpired: the confirmation window elapsed before finality.
	// Terminal.
	StatusExpired Status = "EXPIRED"
)

// validTransitions defines allowed state transitions. No transition skips
// a state and no backward transition exists.
var validTransitions = map[Status][]Status{
	StatusInitial:   {StatusSubmitted},
	StatusSubmitted: {StatusPaid, StatusExpired},
	StatusPaid:      {},
	StatusExpired:   {},
}

// CanTransitionTo checks whether the status may move to target.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusExpired
}

func (s Status) String() string {
	return string(s)
}
