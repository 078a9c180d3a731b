package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/oklog/ulid/v2"
)

// EventLog appends lifecycle events inside the caller's unit of work and
// reads them back. Event ids are ULIDs that increase monotonically within
// this process.
type EventLog struct {
	repos repomanager.RepositoryManager

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewEventLog(repos repomanager.RepositoryManager) *EventLog {
	return newEventLog(repos, rand.Reader)
}

func newEventLog(repos repomanager.RepositoryManager, r io.Reader) *EventLog {
	return &EventLog{repos: repos, entropy: ulid.Monotonic(r, 0)}
}

func (l *EventLog) newID(at time.Time) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), l.entropy)
	if err != nil {
		return "", fmt.Errorf("event id: %w", err)
	}
	return id.String(), nil
}

// Append records one event for passwordID on behalf of who.
func (l *EventLog) Append(ctx context.Context, tx dbx.DBTX, passwordID string, who session.Identity,
	typ models.EventType, at time.Time) (*models.PasswordEvent, error) {

	id, err := l.newID(at)
	if err != nil {
		return nil, err
	}
	ev := &models.PasswordEvent{
		ID:         id,
		PasswordID: passwordID,
		UserID:     who.UserID,
		DeviceID:   who.DeviceID,
		Type:       typ,
		EventDate:  at,
	}
	if err := l.repos.Events(tx).Append(ctx, ev); err != nil {
		return nil, classify("append event", err)
	}
	return ev, nil
}

// History returns a snapshot of the password's events in order.
func (l *EventLog) History(ctx context.Context, tx dbx.DBTX, passwordID string) ([]models.PasswordEvent, error) {
	evs, err := l.repos.Events(tx).History(ctx, passwordID)
	if err != nil {
		return nil, classify("history", err)
	}
	out := make([]models.PasswordEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, *ev)
	}
	return out, nil
}
