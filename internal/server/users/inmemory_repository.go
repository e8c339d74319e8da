package users

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"

	"credkeeper/internal/shared"
)

// InMemoryRepository is a mutex-guarded map implementation of Repository,
// used by tests and the -m development mode.
type InMemoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, shared.ErrorConflict
		}
	}

	now := time.Now()
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (r *InMemoryRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return shared.ErrorNotFound
	}
	hash := tokenHash
	expiry := expiresAt
	u.ResetTokenHash = &hash
	u.ResetTokenExpiresAt = &expiry
	u.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) ClearResetToken(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return shared.ErrorNotFound
	}
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetTokenHash == nil || u.ResetTokenExpiresAt == nil {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(*u.ResetTokenHash), []byte(tokenHash)) != 1 {
			continue
		}
		if !time.Now().Before(*u.ResetTokenExpiresAt) {
			continue
		}
		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = nil
		u.ResetTokenExpiresAt = nil
		u.UpdatedAt = time.Now()
		out := *u
		return &out, nil
	}
	return nil, shared.ErrorInvalidToken
}
