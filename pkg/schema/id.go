package schema

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewRequestID generates a correlation ID for one outgoing call in format REQ-{nanoid(10)}.
func NewRequestID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("REQ-%s", id), nil
}

// NewConversationID generates a label for one conversation instance in format CONV-{nanoid(10)}.
func NewConversationID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CONV-%s", id), nil
}
