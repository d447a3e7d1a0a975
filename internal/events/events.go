// Package events publishes audit lifecycle notifications to NATS.
package events

import (
	"log/slog"
	"time"
)

type AuditEvent struct {
	AuditID string `json:"audit_id"`
	Area    string `json:"area"`
	Auditor string `json:"auditor,omitempty"`
	Score   int    `json:"score"`
	Actor   string `json:"actor,omitempty"`
	Actions int    `json:"actions_generated,omitempty"`
}

type ActionEvent struct {
	ActionID    string    `json:"action_id"`
	AuditID     string    `json:"audit_id,omitempty"`
	Area        string    `json:"area,omitempty"`
	Status      string    `json:"status,omitempty"`
	Responsable string    `json:"responsable,omitempty"`
	DueDate     time.Time `json:"due_date,omitempty"`
	Actor       string    `json:"actor,omitempty"`
}

type ConfigEvent struct {
	Questions    int    `json:"questions"`
	Areas        int    `json:"areas"`
	Responsables int    `json:"responsables"`
	Actor        string `json:"actor,omitempty"`
}

type StatsEvent struct {
	Pending    int       `json:"pending"`
	InProgress int       `json:"in_progress"`
	Closed     int       `json:"closed"`
	Overdue    int       `json:"overdue"`
	Timestamp  time.Time `json:"timestamp"`
}

// Emit publishes when p is non-nil and logs failures instead of returning them.
func Emit(p Publisher, logger *slog.Logger, subject string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, data); err != nil {
		logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
