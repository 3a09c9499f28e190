package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory credential store used in development mode
// and as the test fake.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by id
}

// NewMemoryRepository builds an in-memory user store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

// Create inserts a user, enforcing mobile/email uniqueness like the database
// index does.
func (r *MemoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Mobile == user.Mobile {
			return ErrMobileTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

// Delete removes a user. Only the registration compensation path uses it.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepository) FindByMobile(_ context.Context, mobile string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Mobile == mobile {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepository) IdentityExists(_ context.Context, mobile, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Mobile == mobile || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch Patch) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if patch.Email != nil && *patch.Email != user.Email {
		for _, u := range r.users {
			if u.ID != id && u.Email == *patch.Email {
				return User{}, ErrEmailTaken
			}
		}
		user.Email = *patch.Email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.Latitude != nil {
		user.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		user.Longitude = *patch.Longitude
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *MemoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *User) {
		t := at.UTC()
		u.LastLogin = &t
	})
}

func (r *MemoryRepository) SetVerified(_ context.Context, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Mobile == mobile {
			u.Verified = true
			u.UpdatedAt = time.Now().UTC()
			r.users[id] = u
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) SetPassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *User) { u.PasswordHash = hash })
}

func (r *MemoryRepository) SetOnline(_ context.Context, id string, online bool) error {
	return r.mutate(id, func(u *User) { u.Online = online })
}

func (r *MemoryRepository) Deactivate(_ context.Context, id string) error {
	return r.mutate(id, func(u *User) {
		u.Active = false
		u.Online = false
	})
}

func (r *MemoryRepository) mutate(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
