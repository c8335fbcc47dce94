package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Heisenberg208/chatbot-platform/internal/conversation"
	"github.com/Heisenberg208/chatbot-platform/pkg/schema"
)

// Transcript is the exported form of one conversation instance.
type Transcript struct {
	ProjectID   string           `yaml:"project_id"`
	ProjectName string           `yaml:"project_name,omitempty"`
	SessionID   string           `yaml:"session_id,omitempty"`
	InstanceID  string           `yaml:"instance_id"`
	ExportedAt  time.Time        `yaml:"exported_at"`
	Messages    []schema.Message `yaml:"messages"`
}

// New builds a transcript from a conversation snapshot.
func New(project schema.Project, snap conversation.Snapshot, now time.Time) Transcript {
	return Transcript{
		ProjectID:   snap.ProjectID,
		ProjectName: project.Name,
		SessionID:   snap.SessionID,
		InstanceID:  snap.InstanceID,
		ExportedAt:  now.UTC(),
		Messages:    snap.Messages,
	}
}

// Write saves t as YAML at path, creating parent directories.
func Write(path string, t Transcript) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Read loads a transcript written by Write.
func Read(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return &t, nil
}
