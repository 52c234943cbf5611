package entities

import "time"

// Audit actions recorded by template stores.
const (
	AuditTemplateSaved   = "template_saved"
	AuditTemplateDeleted = "template_deleted"
)

// AuditEntry represents a logged change to a template library.
type AuditEntry struct {
	ID         int64          `json:"id" yaml:"id"`
	Action     string         `json:"action" yaml:"action"`
	TemplateID string         `json:"templateId,omitempty" yaml:"templateId,omitempty"`
	Type       ContentType    `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Details    map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" yaml:"createdAt"`
}
