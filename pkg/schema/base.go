package schema

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"      // Typed by the person at the keyboard
	RoleAssistant Role = "assistant" // Returned by the completion service, or synthesized on failure
	RoleSystem    Role = "system"    // Project prompt; never appended to a conversation log
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ValidationLimits defines the constraints enforced before any network call.
const (
	ProjectNameMin   = 1
	ProjectNameMax   = 255
	PasswordMin      = 8
	PasswordMax      = 100
	PromptContentMin = 1
	MessageMin       = 1
)
