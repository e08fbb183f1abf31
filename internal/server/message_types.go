package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeNewMatch MessageType = "new_match"
	MessageTypePlay     MessageType = "play"
	MessageTypeState    MessageType = "state"

	// Server to client messages
	MessageTypeWelcome      MessageType = "welcome"
	MessageTypeMatchStarted MessageType = "match_started"
	MessageTypeTurnResult   MessageType = "turn_result"
	MessageTypeMatchState   MessageType = "match_state"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
