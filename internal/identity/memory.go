package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type memoryDirectory struct {
	mu    sync.RWMutex
	users []User
}

// NewMemoryDirectory builds an in-memory user directory for tests and local runs.
func NewMemoryDirectory(seed ...User) Directory {
	return &memoryDirectory{users: append([]User(nil), seed...)}
}

func (d *memoryDirectory) ListUsers(_ context.Context, query UserQuery) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		if query.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *memoryDirectory) CreateUser(_ context.Context, input NewUser) (User, error) {
	if input.ExternalID == "" {
		return User{}, errors.New("external id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	user := User{ID: uuid.NewString(), ExternalID: input.ExternalID, DisplayName: input.DisplayName}
	d.users = append(d.users, user)
	return user, nil
}
