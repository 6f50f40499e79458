package health

// State is the outcome class of a check
type State string

const (
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
	StateInactive  State = "inactive"
)

// Status is a check result. Failures are values, never errors.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Healthy returns a passing status
func Healthy() Status {
	return Status{State: StateHealthy}
}

// Unhealthy returns a failing status carrying reason
func Unhealthy(reason string) Status {
	return Status{State: StateUnhealthy, Reason: reason}
}

// Inactive marks an upstream that was not probed
func Inactive() Status {
	return Status{State: StateInactive}
}

// IsHealthy reports whether the check passed
func (s Status) IsHealthy() bool {
	return s.State == StateHealthy
}

func (s Status) String() string {
	if s.State == StateUnhealthy {
		return "unhealthy(" + s.Reason + ")"
	}
	return string(s.State)
}
