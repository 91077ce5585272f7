package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mikestefanello/backlite"
)

// BinaryLister lists the stored binary URIs still referenced by content
// records.
type BinaryLister interface {
	AllFileURIs() ([]string, error)
}

// orphanMinAge protects binaries saved by an import that has not finished
// reconciling yet. Anything younger stays regardless of references.
const orphanMinAge = time.Hour

// SweepOrphanBinariesTask removes stored binaries no content record points
// at anymore. Re-imports delete the old binary themselves; this catches the
// leftovers of failed reconciles and manually removed records.
type SweepOrphanBinariesTask struct{}

// Config returns the queue configuration for the sweep task.
func (t SweepOrphanBinariesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_orphan_binaries",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepOrphanBinariesProcessor creates a processor that walks baseDir and
// deletes unreferenced files.
func SweepOrphanBinariesProcessor(lister BinaryLister, baseDir string) backlite.QueueProcessor[SweepOrphanBinariesTask] {
	return func(ctx context.Context, task SweepOrphanBinariesTask) error {
		if lister == nil {
			return fmt.Errorf("binary lister not configured")
		}

		uris, err := lister.AllFileURIs()
		if err != nil {
			return fmt.Errorf("listing referenced binaries: %w", err)
		}
		referenced := make(map[string]bool, len(uris))
		for _, uri := range uris {
			referenced[uri] = true
		}

		removed := 0
		err = filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(baseDir, p)
			if err != nil {
				return err
			}
			if referenced[filepath.ToSlash(rel)] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			if time.Since(info.ModTime()) < orphanMinAge {
				return nil
			}

			if err := os.Remove(p); err != nil {
				log.Printf("[TASK] Failed to remove orphan binary %s: %v", rel, err)
				return nil
			}
			removed++
			return nil
		})
		if err != nil {
			return fmt.Errorf("sweeping %s: %w", baseDir, err)
		}

		log.Printf("[TASK] Removed %d orphan binaries", removed)
		return nil
	}
}

// NewSweepOrphanBinariesQueue creates a backlite queue for the sweep task.
func NewSweepOrphanBinariesQueue(lister BinaryLister, baseDir string) backlite.Queue {
	return backlite.NewQueue(SweepOrphanBinariesProcessor(lister, baseDir))
}
