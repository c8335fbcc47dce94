package core

import (
	"errors"

	"github.com/Heisenberg208/chatbot-platform/internal/api"
	"github.com/Heisenberg208/chatbot-platform/internal/projects"
	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

var (
	// ErrNotAuthenticated is returned by operations that need a credential.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNoProject is returned by conversation operations with no project selected.
	ErrNoProject = errors.New("no project selected")
)

// Class groups errors by how the client recovers from them.
type Class int

const (
	ClassNone Class = iota
	// ClassAuthRejected: the credential is missing or invalid. Global teardown.
	ClassAuthRejected
	// ClassValidation: input rejected before any network call.
	ClassValidation
	// ClassTransport: anything else. The operation degrades locally.
	ClassTransport
)

func (c Class) String() string {
	switch c {
	case ClassAuthRejected:
		return "auth_rejected"
	case ClassValidation:
		return "validation"
	case ClassTransport:
		return "transport"
	default:
		return "none"
	}
}

// Classify maps err to the class that decides its handling.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	if api.IsUnauthorized(err) || errors.Is(err, ErrNotAuthenticated) {
		return ClassAuthRejected
	}

	var verr *schema.ValidationError
	var sel *projects.InvalidSelectionError
	if errors.As(err, &verr) || errors.As(err, &sel) || errors.Is(err, ErrNoProject) {
		return ClassValidation
	}

	return ClassTransport
}
