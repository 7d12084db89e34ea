package domain

// ConnState is the lifecycle state of the single logical connection
// owned by a session.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Reconnecting
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Live reports whether the connection can carry client intents.
func (s ConnState) Live() bool {
	return s == Connected
}

// Terminal reports whether the state admits no automatic transition.
// Failed requires re-authentication; Disconnected requires an explicit
// connect triggered by a fresh credential.
func (s ConnState) Terminal() bool {
	return s == Failed || s == Disconnected
}
