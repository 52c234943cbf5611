package entities

import "time"

// CustomizationHistoryEntry records one customization applied to a template.
type CustomizationHistoryEntry struct {
	Customizations Customization `json:"customizations" yaml:"customizations"`
	ResultID       string        `json:"resultId" yaml:"resultId"`
	Timestamp      time.Time     `json:"timestamp" yaml:"timestamp"`
}

// HistoryKey is the key history entries are filed under.
func HistoryKey(templateID string, contentType ContentType) string {
	return templateID + ":" + string(contentType)
}
