package session

// State is the lifecycle state of a scan session.
type State uint8

const (
	// StateIdle - machine created, scan not started.
	StateIdle State = iota

	// StateOpening - waiting for the device to open.
	StateOpening

	// StateConfiguring - applying the resolved configuration.
	StateConfiguring

	// StateScanning - scan requested, no document yet.
	StateScanning

	// StateTransferring - at least one document has arrived.
	StateTransferring

	// StateCompleted - terminal success.
	StateCompleted

	// StateFailed - terminal failure.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateOpening:
		return "OPENING"
	case StateConfiguring:
		return "CONFIGURING"
	case StateScanning:
		return "SCANNING"
	case StateTransferring:
		return "TRANSFERRING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s is COMPLETED or FAILED.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Active reports whether s is a non-idle, non-terminal state.
func (s State) Active() bool {
	return s != StateIdle && !s.Terminal()
}
