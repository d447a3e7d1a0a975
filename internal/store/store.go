package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Rating string

const (
	RatingYes     Rating = "SI"
	RatingNo      Rating = "NO"
	RatingPartial Rating = "PARCIAL"
	RatingNA      Rating = "NA"
)

// Valid reports whether r is one of the four checklist ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingYes, RatingNo, RatingPartial, RatingNA:
		return true
	}
	return false
}

type ActionStatus string

const (
	ActionPending    ActionStatus = "PENDING"
	ActionInProgress ActionStatus = "IN_PROGRESS"
	ActionClosed     ActionStatus = "CLOSED"
)

func (s ActionStatus) Valid() bool {
	switch s {
	case ActionPending, ActionInProgress, ActionClosed:
		return true
	}
	return false
}

// Label is the human-readable status used in reports.
func (s ActionStatus) Label() string {
	switch s {
	case ActionPending:
		return "Pendiente"
	case ActionInProgress:
		return "En Proceso"
	case ActionClosed:
		return "Cerrado"
	}
	return string(s)
}

type Question struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type Answer struct {
	QuestionID int    `json:"questionId"`
	Rating     Rating `json:"rating"`
}

type AuditRecord struct {
	ID          uuid.UUID `json:"id"`
	Area        string    `json:"area"`
	Auditor     string    `json:"auditor"`
	Responsable string    `json:"responsable"`
	Date        time.Time `json:"date"`
	Answers     []Answer  `json:"answers"`
	Score       int       `json:"score"`
}

type ActionItem struct {
	ID              uuid.UUID    `json:"id"`
	AuditID         uuid.UUID    `json:"auditId"`
	Area            string       `json:"area"`
	QuestionID      int          `json:"questionId"`
	QuestionText    string       `json:"questionText"`
	IssueType       Rating       `json:"issueType"`
	SuggestedAction string       `json:"suggestedAction"`
	Responsable     string       `json:"responsable"`
	DueDate         time.Time    `json:"dueDate"`
	Status          ActionStatus `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
	Comments        string       `json:"comments,omitempty"`
}

type Responsable struct {
	Name string `json:"name"`
	Area string `json:"area,omitempty"`
}

type AppConfig struct {
	Questions    []Question    `json:"questions"`
	Areas        []string      `json:"areas"`
	Responsables []Responsable `json:"responsables"`
}

// Clone returns a deep copy so callers can mutate the slices freely.
func (c AppConfig) Clone() AppConfig {
	return AppConfig{
		Questions:    append([]Question(nil), c.Questions...),
		Areas:        append([]string(nil), c.Areas...),
		Responsables: append([]Responsable(nil), c.Responsables...),
	}
}

// Keys under which each collection is persisted.
const (
	KeyRecords     = "audit_records"
	KeyActions     = "audit_actions"
	KeyConfig      = "audit_config"
	KeyLastAuditor = "last_auditor_name"
)

// Backend is a flat key-value blob store. Get returns nil, nil for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
