package sla

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/parishops/sla-monitor/internal/model"
)

// memSource is an in-memory ItemSource for tests
type memSource struct {
	mu      sync.Mutex
	items   map[model.Category][]model.WorkItem
	listErr map[model.Category]error
	markErr error
	marked  []string
}

func newMemSource() *memSource {
	return &memSource{
		items:   make(map[model.Category][]model.WorkItem),
		listErr: make(map[model.Category]error),
	}
}

func (s *memSource) add(item model.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Category] = append(s.items[item.Category], item)
}

func (s *memSource) ListPending(ctx context.Context, category model.Category) ([]model.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.listErr[category]; err != nil {
		return nil, err
	}

	var out []model.WorkItem
	for _, item := range s.items[category] {
		if item.Status == "" || item.Status == "pending" {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memSource) MarkAlerted(ctx context.Context, category model.Category, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return s.markErr
	}

	items := s.items[category]
	for i := range items {
		if items[i].ID == id {
			items[i].AlertSent = true
			items[i].AlertSentAt = &at
			s.marked = append(s.marked, fmt.Sprintf("%s/%s", category, id))
			return nil
		}
	}
	return fmt.Errorf("work item %s/%s not found", category, id)
}

// memThresholds is an in-memory ThresholdStore for tests
type memThresholds struct {
	mu      sync.Mutex
	configs map[model.Category]model.ThresholdConfig
	err     error
}

func newMemThresholds() *memThresholds {
	return &memThresholds{configs: make(map[model.Category]model.ThresholdConfig)}
}

func (s *memThresholds) GetThresholds(ctx context.Context, category model.Category) (model.ThresholdConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.ThresholdConfig{}, false, s.err
	}
	cfg, found := s.configs[category]
	return cfg, found, nil
}

func (s *memThresholds) UpsertThresholds(ctx context.Context, category model.Category, cfg model.ThresholdConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.configs[category] = cfg
	return nil
}

// fakeSettings satisfies SettingsReader
type fakeSettings struct {
	enabled bool
	err     error
}

func (s *fakeSettings) AlertsEnabled(ctx context.Context) (bool, error) {
	return s.enabled, s.err
}

// fakeDispatcher records dispatched items; block, when set, holds every
// dispatch until released
type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	err        error
	block      chan struct{}
	started    chan struct{}
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, item *model.WorkItem, severity model.Severity) error {
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block != nil {
		<-d.block
	}
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, fmt.Sprintf("%s/%s:%s", item.Category, item.ID, severity))
	return nil
}

func (d *fakeDispatcher) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.dispatched))
	copy(out, d.dispatched)
	return out
}
