// Package reportstate holds the single-slot forum report cache. At most one
// aggregation run is in flight per period, and a finished result is reused
// until another period is requested or the state is reset.
package reportstate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/model"
)

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Ready   Status = "ready"
	Error   Status = "error"
)

// State is never modified after it is published; every transition installs
// a new value.
type State struct {
	Key       string                 `json:"key"`
	Status    Status                 `json:"status"`
	RunID     string                 `json:"runId,omitempty"`
	Data      *model.ForumReportData `json:"-"`
	Err       error                  `json:"-"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Runner performs one aggregation run for a period.
type Runner func(ctx context.Context, period model.Period) (*model.ForumReportData, error)

type operation struct {
	id   string
	key  string
	done chan struct{}
	data *model.ForumReportData
	err  error
}

type Machine struct {
	mu      sync.Mutex
	state   *State
	pending *operation

	run     Runner
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewMachine(run Runner, logger *zap.SugaredLogger, m *metrics.Metrics) *Machine {
	return &Machine{
		state:   &State{Status: Idle, UpdatedAt: time.Now()},
		run:     run,
		logger:  logger,
		metrics: m,
	}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Request returns the report data for period. A ready result for the same
// period is returned without a run; a loading run for the same period is
// joined; anything else starts a new run. The run itself is not tied to ctx,
// so a caller giving up does not cancel it for other waiters.
func (m *Machine) Request(ctx context.Context, period model.Period) (*model.ForumReportData, error) {
	key := period.Key()

	m.mu.Lock()
	st := m.state
	if st.Key == key && st.Status == Ready {
		m.mu.Unlock()
		return st.Data, nil
	}

	op := m.pending
	if st.Key != key || st.Status != Loading || op == nil || op.key != key {
		op = &operation{id: uuid.NewString(), key: key, done: make(chan struct{})}
		m.pending = op
		m.publish(&State{Key: key, Status: Loading, RunID: op.id})
		go m.execute(context.WithoutCancel(ctx), op, period)
	} else {
		m.logger.Debugw("joining in-flight report run", "key", key, "run", op.id)
	}
	m.mu.Unlock()

	select {
	case <-op.done:
		return op.data, op.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reset returns to idle with no key. A run still in flight finishes but its
// result is discarded.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	m.publish(&State{Status: Idle})
}

func (m *Machine) execute(ctx context.Context, op *operation, period model.Period) {
	data, err := m.run(ctx, period)
	if err != nil {
		data = nil
	} else {
		if data == nil {
			data = &model.ForumReportData{}
		}
		data.RunID = op.id
	}

	m.mu.Lock()
	if m.pending == op {
		m.pending = nil
		if err != nil {
			m.logger.Warnw("report run failed", "key", op.key, "run", op.id, "error", err)
			m.publish(&State{Key: op.key, Status: Error, RunID: op.id, Err: err})
		} else {
			m.publish(&State{Key: op.key, Status: Ready, RunID: op.id, Data: data})
		}
	} else {
		m.logger.Infow("discarding stale report run", "key", op.key, "run", op.id)
	}
	op.data, op.err = data, err
	m.mu.Unlock()

	close(op.done)
}

// publish must be called with mu held.
func (m *Machine) publish(st *State) {
	st.UpdatedAt = time.Now()
	m.state = st
	m.metrics.StateTransition(string(st.Status))
}
