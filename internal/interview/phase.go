package interview

// Phase is a step of the interview.
type Phase string

const (
	PhaseGreeting   Phase = "GREETING"
	PhaseCollecting Phase = "COLLECTING"
	PhaseConfirming Phase = "CONFIRMING"
	PhaseAssessing  Phase = "ASSESSING"
	PhaseClosing    Phase = "CLOSING"
	PhaseEnded      Phase = "ENDED"
)

// edges lists the allowed transitions. Every non-terminal phase may also go to ENDED.
var edges = map[Phase][]Phase{
	PhaseGreeting:   {PhaseCollecting},
	PhaseCollecting: {PhaseConfirming},
	PhaseConfirming: {PhaseAssessing, PhaseCollecting},
	PhaseAssessing:  {PhaseClosing},
	PhaseClosing:    {PhaseEnded},
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseGreeting, PhaseCollecting, PhaseConfirming, PhaseAssessing, PhaseClosing, PhaseEnded:
		return true
	}
	return false
}

func (p Phase) Terminal() bool {
	return p == PhaseEnded
}

// CanTransition reports whether p may move to next.
func (p Phase) CanTransition(next Phase) bool {
	if !p.Valid() || p.Terminal() {
		return false
	}
	if next == PhaseEnded {
		return true
	}
	for _, allowed := range edges[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EndReason explains why a session reached ENDED.
type EndReason string

const (
	EndedCompleted     EndReason = "completed"
	EndedCandidateExit EndReason = "candidate_exit"
	EndedError         EndReason = "error"
)
