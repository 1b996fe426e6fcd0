package identity

import (
	"context"
	"errors"
)

// ErrAmbiguousUser indicates more than one directory record claims the same
// external identity.
var ErrAmbiguousUser = errors.New("more than one directory user for identity")

// User is a directory record for a workspace member.
type User struct {
	// ID is the directory id referenced by wallets and entry metadata.
	ID string
	// ExternalID is the chat identity (AAD object id) the record was created for.
	ExternalID  string
	DisplayName string
}

// UserQuery narrows ListUsers. An empty query lists every user.
type UserQuery struct {
	ID         string
	ExternalID string
}

// Matches reports whether u satisfies the query.
func (q UserQuery) Matches(u User) bool {
	if q.ID != "" && u.ID != q.ID {
		return false
	}
	if q.ExternalID != "" && u.ExternalID != q.ExternalID {
		return false
	}
	return true
}

// NewUser describes a directory record to create.
type NewUser struct {
	ExternalID  string
	DisplayName string
}

// Directory is the external user directory.
type Directory interface {
	ListUsers(ctx context.Context, query UserQuery) ([]User, error)
	CreateUser(ctx context.Context, input NewUser) (User, error)
}

// FreshLister is implemented by directories that can bypass a cache. Ensure
// uses it to confirm a miss before creating a user.
type FreshLister interface {
	ListUsersFresh(ctx context.Context, query UserQuery) ([]User, error)
}
