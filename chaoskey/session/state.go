package session

// State is the position of a session in the protocol.
type State int

const (
	StateUnverified State = iota
	StateUnsynced
	StateSyncing
	StateSynced
	StateTransmitting
	StateCompleted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateUnsynced:
		return "unsynced"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	case StateTransmitting:
		return "transmitting"
	case StateCompleted:
		return "completed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Role selects which side of the protocol a session plays.
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

func (r Role) String() string {
	if r == RoleInitiator {
		return "initiator"
	}
	return "responder"
}
