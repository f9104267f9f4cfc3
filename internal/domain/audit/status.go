package audit

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsActive reports whether an audit of this status still blocks a new run.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

func CanTransitionStatus(from Status, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

type EntityType string

const (
	EntityCandidate EntityType = "candidate"
	EntityOpponent  EntityType = "opponent"
)
