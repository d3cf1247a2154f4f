package chat

import (
	"context"
	"sync"

	"tenant-portal/internal/repositories"
)

// DefaultRetention is how many messages a room keeps.
const DefaultRetention = 10

// Trim deletes the oldest messages of a room so that at most keep remain.
// It lists, counts and deletes without a transaction: two concurrent
// trims may both act on a stale count, which only over- or under-trims
// by a few rows.
func Trim(ctx context.Context, repo repositories.MessageRepository, chatID string, keep int) (int, error) {
	msgs, err := repo.ListRoomMessages(ctx, chatID)
	if err != nil {
		return 0, err
	}
	excess := len(msgs) - keep
	if excess <= 0 {
		return 0, nil
	}

	ids := make([]int, 0, excess)
	for _, m := range msgs[:excess] {
		ids = append(ids, m.ID)
	}
	if err := repo.DeleteMessages(ctx, ids); err != nil {
		return 0, err
	}
	return excess, nil
}

// roomLocks serializes append+trim per room inside one process.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*roomLock)}
}

func (l *roomLocks) lock(chatID string) func() {
	l.mu.Lock()
	rl, ok := l.locks[chatID]
	if !ok {
		rl = &roomLock{}
		l.locks[chatID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, chatID)
		}
		l.mu.Unlock()
	}
}
