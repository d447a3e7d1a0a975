// Package actionplan derives corrective actions from audits and supports
// the manual follow-up of those actions.
package actionplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

// DueOffsetDays is the number of calendar days between an audit and the
// due date of each action it raises.
const DueOffsetDays = 7

// SuggestedAction is the remediation text generated for a finding.
func SuggestedAction(questionText string) string {
	return `Corregir hallazgo: "` + questionText + `"`
}

// Derive builds one pending action per negative or partial answer of a
// newly saved audit. Answers whose question is not in questions are skipped.
// It must not be called when an existing audit is edited.
func Derive(record store.AuditRecord, questions []store.Question, now time.Time, newID func() uuid.UUID) []store.ActionItem {
	if newID == nil {
		newID = uuid.New
	}
	byID := make(map[int]store.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	due := record.Date.AddDate(0, 0, DueOffsetDays)
	var out []store.ActionItem
	for _, a := range record.Answers {
		if a.Rating != store.RatingNo && a.Rating != store.RatingPartial {
			continue
		}
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		out = append(out, store.ActionItem{
			ID:              newID(),
			AuditID:         record.ID,
			Area:            record.Area,
			QuestionID:      q.ID,
			QuestionText:    q.Text,
			IssueType:       a.Rating,
			SuggestedAction: SuggestedAction(q.Text),
			Responsable:     record.Responsable,
			DueDate:         due,
			Status:          store.ActionPending,
			CreatedAt:       now,
		})
	}
	return out
}

// Overdue reports whether an open action is past its due date.
func Overdue(item store.ActionItem, now time.Time) bool {
	return item.Status != store.ActionClosed && item.DueDate.Before(now)
}

type Filter struct {
	Status store.ActionStatus // empty matches every status
	Search string
}

// Apply returns the actions matching f, preserving order. Search is a
// case-insensitive substring match on area, suggestion, question text and
// responsable.
func Apply(items []store.ActionItem, f Filter) []store.ActionItem {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]store.ActionItem, 0, len(items))
	for _, it := range items {
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if term != "" && !matches(it, term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matches(it store.ActionItem, term string) bool {
	for _, field := range []string{it.Area, it.SuggestedAction, it.QuestionText, it.Responsable} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Closed     int `json:"closed"`
	Overdue    int `json:"overdue"`
}

func Counts(items []store.ActionItem, now time.Time) StatusCounts {
	var c StatusCounts
	for _, it := range items {
		switch it.Status {
		case store.ActionPending:
			c.Pending++
		case store.ActionInProgress:
			c.InProgress++
		case store.ActionClosed:
			c.Closed++
		}
		if Overdue(it, now) {
			c.Overdue++
		}
	}
	return c
}

// Patch is a manual edit. Nil fields are left unchanged. Any status may be
// set from any other, including reopening a closed action.
type Patch struct {
	Status          *store.ActionStatus `json:"status,omitempty"`
	QuestionText    *string             `json:"questionText,omitempty"`
	SuggestedAction *string             `json:"suggestedAction,omitempty"`
	Responsable     *string             `json:"responsable,omitempty"`
	DueDate         *time.Time          `json:"dueDate,omitempty"`
	Comments        *string             `json:"comments,omitempty"`
}

func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status %q", *p.Status)
	}
	return nil
}

func (p Patch) ApplyTo(item store.ActionItem) store.ActionItem {
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.QuestionText != nil {
		item.QuestionText = *p.QuestionText
	}
	if p.SuggestedAction != nil {
		item.SuggestedAction = *p.SuggestedAction
	}
	if p.Responsable != nil {
		item.Responsable = *p.Responsable
	}
	if p.DueDate != nil {
		item.DueDate = *p.DueDate
	}
	if p.Comments != nil {
		item.Comments = *p.Comments
	}
	return item
}
