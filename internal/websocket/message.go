package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Actions the server answers to client requests.
const (
	ActionPing  = "ping"
	ActionPong  = "pong"
	ActionError = "error"
)

// NewMessage encodes an action and payload.
func NewMessage(action string, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{Action: action, Payload: payload})
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(text string) []byte {
	b, err := NewMessage(ActionError, map[string]string{"error": text})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode websocket error message")
		return []byte(`{"action":"error"}`)
	}
	return b
}
