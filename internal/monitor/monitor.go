// Package monitor periodically sweeps the action plan for overdue items.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

const DefaultInterval = time.Hour

// Source is the read side of the audit state the sweep needs.
type Source interface {
	Actions(f actionplan.Filter) []store.ActionItem
	Now() time.Time
}

type Monitor struct {
	source   Source
	events   events.Publisher
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	notified map[uuid.UUID]bool

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New builds a monitor. pub and m may be nil.
func New(src Source, pub events.Publisher, m *metrics.Metrics, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		source:   src,
		events:   pub,
		metrics:  m,
		interval: interval,
		logger:   logger,
		notified: make(map[uuid.UUID]bool),
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.loop(ctx)
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Sweep()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep counts overdue actions and announces each newly overdue one. It
// returns the current overdue count.
func (m *Monitor) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.source.Now()
	items := m.source.Actions(actionplan.Filter{})
	counts := actionplan.Counts(items, now)

	if m.metrics != nil {
		m.metrics.ActionsOverdue.Set(float64(counts.Overdue))
	}

	present := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	for id := range m.notified {
		if !present[id] {
			delete(m.notified, id)
		}
	}

	announced := 0
	for _, it := range items {
		if !actionplan.Overdue(it, now) || m.notified[it.ID] {
			continue
		}
		m.notified[it.ID] = true
		announced++
		events.Emit(m.events, m.logger, events.SubjectActionOverdue(it.ID.String()), events.ActionEvent{
			ActionID:    it.ID.String(),
			AuditID:     it.AuditID.String(),
			Area:        it.Area,
			Status:      string(it.Status),
			Responsable: it.Responsable,
			DueDate:     it.DueDate,
		})
	}
	events.Emit(m.events, m.logger, events.SubjectActionsStats, events.StatsEvent{
		Pending:    counts.Pending,
		InProgress: counts.InProgress,
		Closed:     counts.Closed,
		Overdue:    counts.Overdue,
		Timestamp:  now,
	})

	if counts.Overdue > 0 {
		m.logger.Info("overdue actions", "count", counts.Overdue, "newly_overdue", announced)
	}
	return counts.Overdue
}
