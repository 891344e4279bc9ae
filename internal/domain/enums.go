package domain

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleAgent   Role = "agent"
	RolePatient Role = "patient"
	RoleAdvisor Role = "advisor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAgent, RolePatient, RoleAdvisor:
		return true
	}
	return false
}

// EventType identifies a session feed event.
type EventType string

const (
	EventTurnAppended EventType = "turn_appended"
	EventSessionEnded EventType = "session_ended"
)
