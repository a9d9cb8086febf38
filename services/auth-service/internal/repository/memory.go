package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
)

type userMemoryRepository struct {
	mu      sync.Mutex
	users   map[bson.ObjectID]*model.User
	byEmail map[string]bson.ObjectID
}

// NewUserMemoryRepository returns a process-local UserRepository. Each method
// holds a single lock, which gives the same per-document atomicity the Mongo
// implementation gets from conditional updates.
func NewUserMemoryRepository() UserRepository {
	return &userMemoryRepository{
		users:   make(map[bson.ObjectID]*model.User),
		byEmail: make(map[string]bson.ObjectID),
	}
}

func (r *userMemoryRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := cloneUser(user)
	r.users[user.ID] = stored
	r.byEmail[user.Email] = user.ID

	return cloneUser(stored), nil
}

func (r *userMemoryRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneUser(user), nil
}

func (r *userMemoryRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneUser(r.users[id]), nil
}

func (r *userMemoryRepository) SetPasswordResetToken(
	_ context.Context,
	email, token string,
	expiresAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return ErrNotFound
	}

	user := r.users[id]
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expiresAt
	user.UpdatedAt = time.Now()

	return nil
}

func (r *userMemoryRepository) GetUserByResetToken(
	_ context.Context,
	token string,
	now time.Time,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.findByLiveResetToken(token, now)
	if user == nil {
		return nil, ErrNotFound
	}

	return cloneUser(user), nil
}

func (r *userMemoryRepository) ConsumePasswordResetToken(
	_ context.Context,
	token string,
	now time.Time,
	passwordHash string,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.findByLiveResetToken(token, now)
	if user == nil {
		return nil, ErrNotFound
	}

	user.PasswordHash = passwordHash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	user.UpdatedAt = time.Now()

	return cloneUser(user), nil
}

func (r *userMemoryRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, user := range r.users {
		if user.ResetPasswordExpires != nil && !now.Before(*user.ResetPasswordExpires) {
			user.ResetPasswordToken = ""
			user.ResetPasswordExpires = nil
			cleared++
		}
	}

	return cleared, nil
}

func (r *userMemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *userMemoryRepository) findByLiveResetToken(token string, now time.Time) *model.User {
	if token == "" {
		return nil
	}

	for _, user := range r.users {
		if user.ResetPasswordToken == token && user.HasLiveResetToken(now) {
			return user
		}
	}

	return nil
}

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.ResetPasswordExpires != nil {
		expires := *u.ResetPasswordExpires
		c.ResetPasswordExpires = &expires
	}
	return &c
}
