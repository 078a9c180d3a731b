package passwords

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

// MemoryRepository keeps rows in a map. Rows are cloned on the way in and
// out so callers never share memory with the store.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.PasswordRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*models.PasswordRow)}
}

func (r *MemoryRepository) Create(ctx context.Context, row *models.PasswordRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ID]; ok {
		return fmt.Errorf("password %s: %w", row.ID, common.ErrAlreadyExists)
	}
	r.rows[row.ID] = row.Clone()
	dbx.OnRollback(ctx, func() { r.restore(row.ID, nil) })
	return nil
}

// restore puts prev back under id, removing the row when prev is nil.
func (r *MemoryRepository) restore(id string, prev *models.PasswordRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.rows, id)
		return
	}
	r.rows[id] = prev
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.PasswordRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return row.Clone(), nil
}

// GetForUpdate is Get; callers hold the row's lock for the unit of work.
func (r *MemoryRepository) GetForUpdate(ctx context.Context, id string) (*models.PasswordRow, error) {
	return r.Get(ctx, id)
}

func (r *MemoryRepository) Update(ctx context.Context, row *models.PasswordRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[row.ID]
	if !ok || cur.Deleted() {
		return common.ErrNotFound
	}
	next := row.Clone()
	next.UserID = cur.UserID
	next.Type = cur.Type
	next.CreatedAt = cur.CreatedAt
	next.DeletedAt = nil
	r.rows[row.ID] = next
	dbx.OnRollback(ctx, func() { r.restore(row.ID, cur) })
	return nil
}

func (r *MemoryRepository) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok || cur.Deleted() {
		return common.ErrNotFound
	}
	next := cur.Clone()
	next.Secret = nil
	next.DeletedAt = &at
	next.UpdatedAt = at
	r.rows[id] = next
	dbx.OnRollback(ctx, func() { r.restore(id, cur) })
	return nil
}

func (r *MemoryRepository) ListActive(_ context.Context, userID string, types []models.PasswordType) ([]*models.PasswordRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.PasswordRow
	for _, row := range r.rows {
		if row.UserID != userID || row.Deleted() {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, row.Type) {
			continue
		}
		result = append(result, row.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
