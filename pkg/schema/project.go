package schema

// Project is an immutable snapshot of a project as listed by the service.
// Identity is ID; the remaining fields are informational.
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	UserID      string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at"`
}

// Prompt is a system prompt attached to a project.
type Prompt struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"project_id" yaml:"project_id"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
}

// User is the account behind the current credential.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
}
