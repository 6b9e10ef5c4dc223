package reporting

import (
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
)

// HistoricCoverageMerger attaches a coverage snapshot to a class.
type HistoricCoverageMerger interface {
	Merge(class *model.Class, executionTime time.Time)
}

// SnapshotMerger appends one snapshot of the class's current coverage, labelled with Tag.
type SnapshotMerger struct {
	Tag string
}

// NewSnapshotMerger creates a merger that labels every snapshot with tag.
func NewSnapshotMerger(tag string) *SnapshotMerger {
	return &SnapshotMerger{Tag: tag}
}

// Merge appends a new record; existing records are left untouched.
func (m *SnapshotMerger) Merge(class *model.Class, executionTime time.Time) {
	class.AddHistoricCoverage(model.NewHistoricCoverage(class, executionTime, m.Tag))
}
