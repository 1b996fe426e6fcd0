package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service resolves chat identities against the directory.
type Service struct {
	dir    Directory
	logger *slog.Logger
}

// NewService creates a new identity service.
func NewService(dir Directory, logger *slog.Logger) *Service {
	return &Service{dir: dir, logger: logger}
}

// Ensure returns the directory user for the external identity, creating it
// with displayName when none exists.
func (s *Service) Ensure(ctx context.Context, externalID, displayName string) (User, error) {
	if externalID == "" {
		return User{}, errors.New("user identity is required")
	}

	users, err := s.dir.ListUsers(ctx, UserQuery{ExternalID: externalID})
	if err != nil {
		return User{}, fmt.Errorf("list users for %s: %w", externalID, err)
	}

	if len(users) == 0 {
		// A cached miss is never trusted for a write.
		if fresh, ok := s.dir.(FreshLister); ok {
			users, err = fresh.ListUsersFresh(ctx, UserQuery{ExternalID: externalID})
			if err != nil {
				return User{}, fmt.Errorf("list users for %s: %w", externalID, err)
			}
		}
	}

	switch len(users) {
	case 1:
		return users[0], nil
	case 0:
	default:
		return User{}, fmt.Errorf("%w: identity %s has %d records", ErrAmbiguousUser, externalID, len(users))
	}

	user, err := s.dir.CreateUser(ctx, NewUser{ExternalID: externalID, DisplayName: displayName})
	if err != nil {
		return User{}, fmt.Errorf("create user for %s: %w", externalID, err)
	}
	if s.logger != nil {
		s.logger.Info("directory user created",
			slog.String("user_id", user.ID),
			slog.String("external_id", externalID),
		)
	}
	return user, nil
}

// Lookup returns the directory user for the external identity without creating one.
func (s *Service) Lookup(ctx context.Context, externalID string) (User, bool, error) {
	users, err := s.dir.ListUsers(ctx, UserQuery{ExternalID: externalID})
	if err != nil {
		return User{}, false, fmt.Errorf("list users for %s: %w", externalID, err)
	}
	switch len(users) {
	case 0:
		return User{}, false, nil
	case 1:
		return users[0], true, nil
	default:
		return User{}, false, fmt.Errorf("%w: identity %s has %d records", ErrAmbiguousUser, externalID, len(users))
	}
}

// All returns an unfiltered directory snapshot.
func (s *Service) All(ctx context.Context) ([]User, error) {
	users, err := s.dir.ListUsers(ctx, UserQuery{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
