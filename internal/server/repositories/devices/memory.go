package devices

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

type key struct {
	user   string
	device string
}

type MemoryRepository struct {
	mu      sync.RWMutex
	devices map[key]models.Device
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{devices: make(map[key]models.Device)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, d *models.Device) (*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{d.UserID, d.DeviceID}
	next := *d
	next.Active = true
	cur, existed := r.devices[k]
	if existed && cur.LastLogin.After(next.LastLogin) {
		next.LastLogin = cur.LastLogin
	}
	r.devices[k] = next
	dbx.OnRollback(ctx, func() { r.restore(k, cur, existed) })
	return &next, nil
}

func (r *MemoryRepository) restore(k key, prev models.Device, existed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !existed {
		delete(r.devices, k)
		return
	}
	r.devices[k] = prev
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]*models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Device
	for k, d := range r.devices {
		if k.user == userID {
			d := d
			result = append(result, &d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastLogin.Equal(result[j].LastLogin) {
			return result[i].LastLogin.After(result[j].LastLogin)
		}
		return result[i].DeviceID < result[j].DeviceID
	})
	return result, nil
}

func (r *MemoryRepository) Deactivate(ctx context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{userID, deviceID}
	d, ok := r.devices[k]
	if !ok {
		return common.ErrNotFound
	}
	prev := d
	d.Active = false
	r.devices[k] = d
	dbx.OnRollback(ctx, func() { r.restore(k, prev, true) })
	return nil
}
