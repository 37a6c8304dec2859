package storage

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

// minOrphanAge keeps the sweeper away from files an in-flight request
// has written but not yet referenced.
const minOrphanAge = time.Hour

// ReferencedLister reports the stored filenames currently referenced by
// attachment records.
type ReferencedLister interface {
	ReferencedFilenames(ctx context.Context) (map[string]bool, error)
}

// Sweeper deletes files in the uploads directory that no attachment
// record points at. Attachment replacement deletes files before the
// record swap, so a crash in between can leave orphans; the sweep is the
// supervised cleanup for that gap.
type Sweeper struct {
	store *Store
	docs  ReferencedLister
}

func NewSweeper(store *Store, docs ReferencedLister) *Sweeper {
	return &Sweeper{store: store, docs: docs}
}

// Sweep removes unreferenced files older than minOrphanAge. Individual
// deletion failures are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (removed int, err error) {
	referenced, err := s.docs.ReferencedFilenames(ctx)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < minOrphanAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.store.Dir(), entry.Name())); err != nil {
			log.Printf("sweep: remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}
