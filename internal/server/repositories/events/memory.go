package events

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	seq    int64
	events []models.PasswordEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(ctx context.Context, ev *models.PasswordEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ev.Seq = r.seq
	r.events = append(r.events, *ev)
	seq := ev.Seq
	dbx.OnRollback(ctx, func() { r.remove(seq) })
	return nil
}

// remove drops the event with seq. Sequence numbers are not reused.
func (r *MemoryRepository) remove(seq int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = slices.DeleteFunc(r.events, func(ev models.PasswordEvent) bool { return ev.Seq == seq })
}

func (r *MemoryRepository) History(_ context.Context, passwordID string) ([]*models.PasswordEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.PasswordEvent
	for i := range r.events {
		if r.events[i].PasswordID == passwordID {
			ev := r.events[i]
			result = append(result, &ev)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		return a.Seq < b.Seq
	})
	return result, nil
}
