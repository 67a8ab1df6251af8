package service

import (
	"time"

	"taskgraph/internal/db"
	"taskgraph/internal/graph"
)

// CleanupResult reports orphaned rows found or removed.
type CleanupResult struct {
	DryRun bool            `json:"dry_run"`
	Counts db.OrphanCounts `json:"counts"`
}

// Cleanup removes dependency and history rows whose task no longer exists.
// With dryRun it only counts them.
func (s *Service) Cleanup(dryRun bool) (*CleanupResult, error) {
	out := &CleanupResult{DryRun: dryRun}
	err := s.store.Atomic(func(tx *db.Store) error {
		var err error
		if dryRun {
			out.Counts, err = tx.Orphans()
		} else {
			out.Counts, err = tx.DeleteOrphans()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cleanup", "dry_run", dryRun, "dependencies", out.Counts.Dependencies, "history", out.Counts.History)
	return out, nil
}

// PruneResult reports completed tasks removed by Prune.
type PruneResult struct {
	DryRun  bool           `json:"dry_run"`
	Deleted []string       `json:"deleted"`
	Changes []graph.Change `json:"changes"`
}

// Prune deletes completed tasks last updated before cutoff, oldest first.
// Dependents are recomputed after each deletion, all in one transaction.
func (s *Service) Prune(cutoff time.Time, dryRun bool) (*PruneResult, error) {
	out := &PruneResult{DryRun: dryRun, Deleted: []string{}, Changes: []graph.Change{}}
	err := s.store.Atomic(func(tx *db.Store) error {
		tasks, err := tx.CompletedBefore(cutoff)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			out.Deleted = append(out.Deleted, t.ID)
			if dryRun {
				continue
			}
			res, err := s.deleteTask(tx, t.ID)
			if err != nil {
				return err
			}
			out.Changes = append(out.Changes, res.Changes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
