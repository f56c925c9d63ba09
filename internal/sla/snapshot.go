package sla

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// maxCriticalItems caps the most-overdue list in a snapshot
const maxCriticalItems = 10

// CategoryCounts holds the breakdown for one category in a snapshot
type CategoryCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

// SnapshotSummary aggregates counts across all categories
type SnapshotSummary struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Total    int `json:"total"`
}

// CriticalItem is one entry in the snapshot's most-overdue list
type CriticalItem struct {
	Type            model.Category `json:"type"`
	ReferenceNumber string         `json:"reference_number"`
	ItemName        string         `json:"item_name"`
	ClientName      string         `json:"client_name"`
	HoursPending    int            `json:"hours_pending"`
}

// Snapshot is a point-in-time aggregate of SLA status across all
// categories, built on demand for dashboard polling.
type Snapshot struct {
	GeneratedAt   time.Time                          `json:"generated_at"`
	Summary       SnapshotSummary                    `json:"summary"`
	Categories    map[model.Category]*CategoryCounts `json:"categories"`
	CriticalItems []CriticalItem                     `json:"critical_items"`
}

// SnapshotBuilder produces dashboard snapshots by re-running scan and
// classify read-only. It mutates nothing, so any number of dashboard
// viewers can call it concurrently, in parallel with the background scan.
type SnapshotBuilder struct {
	logger   *zap.Logger
	scanner  *ItemScanner
	registry *ThresholdRegistry
}

// NewSnapshotBuilder creates a snapshot builder
func NewSnapshotBuilder(scanner *ItemScanner, registry *ThresholdRegistry, logger *zap.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		logger:   logger.Named("snapshot"),
		scanner:  scanner,
		registry: registry,
	}
}

// candidate pairs an overdue item with its tie-break keys
type candidate struct {
	item          model.WorkItem
	hoursPending  int
	categoryOrder int
}

// BuildSnapshot aggregates current SLA status as of the given instant.
// A category whose source fails is skipped; the snapshot covers whatever
// categories could be read.
func (b *SnapshotBuilder) BuildSnapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	snapshot := &Snapshot{
		GeneratedAt:   now,
		Categories:    make(map[model.Category]*CategoryCounts, len(model.Categories)),
		CriticalItems: []CriticalItem{},
	}

	var critical []candidate

	for order, category := range model.Categories {
		counts := &CategoryCounts{}
		snapshot.Categories[category] = counts

		cfg, err := b.registry.Thresholds(ctx, category)
		if err != nil {
			b.logger.Error("Failed to resolve thresholds, skipping category",
				zap.String("category", string(category)),
				zap.Error(err))
			continue
		}

		items, err := b.scanner.ScanPending(ctx, category)
		if err != nil {
			b.logger.Error("Failed to scan category for snapshot",
				zap.String("category", string(category)),
				zap.Error(err))
			continue
		}

		for _, item := range items {
			switch Classify(cfg, item.CreatedAt, now) {
			case model.SeverityWarning:
				counts.Warning++
			case model.SeverityCritical:
				counts.Critical++
				critical = append(critical, candidate{
					item:          item,
					hoursPending:  item.HoursPending(now),
					categoryOrder: order,
				})
			}
		}

		snapshot.Summary.Critical += counts.Critical
		snapshot.Summary.Warning += counts.Warning
	}

	snapshot.Summary.Total = snapshot.Summary.Critical + snapshot.Summary.Warning

	// Most overdue first; ties resolved by category order then item ID so
	// repeated polls render identically.
	sort.Slice(critical, func(i, j int) bool {
		if critical[i].hoursPending != critical[j].hoursPending {
			return critical[i].hoursPending > critical[j].hoursPending
		}
		if critical[i].categoryOrder != critical[j].categoryOrder {
			return critical[i].categoryOrder < critical[j].categoryOrder
		}
		return critical[i].item.ID < critical[j].item.ID
	})

	for i, c := range critical {
		if i == maxCriticalItems {
			break
		}
		snapshot.CriticalItems = append(snapshot.CriticalItems, CriticalItem{
			Type:            c.item.Category,
			ReferenceNumber: c.item.ReferenceLabel,
			ItemName:        c.item.ItemLabel,
			ClientName:      c.item.SubjectName,
			HoursPending:    c.hoursPending,
		})
	}

	return snapshot, nil
}
