package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/almoxtrack-api/internal/domain"
	"github.com/jhoicas/almoxtrack-api/internal/domain/entity"
	"github.com/jhoicas/almoxtrack-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type userTable struct {
	mu   sync.RWMutex
	byID map[string]entity.User
}

func newUserTable() *userTable {
	return &userTable{byID: make(map[string]entity.User)}
}

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	t *userTable
}

// Create persiste un usuario; el email es único sin distinguir mayúsculas.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, u := range r.t.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.t.byID[user.ID] = *user
	return nil
}

// GetByID obtiene un usuario; (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	if u, ok := r.t.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// GetByEmail busca por email; (nil, nil) si no existe.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	for _, u := range r.t.byID {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// List usuarios ordenados por email.
func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.t.mu.RLock()
	list := make([]*entity.User, 0, len(r.t.byID))
	for _, u := range r.t.byID {
		u := u
		list = append(list, &u)
	}
	r.t.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	if offset >= len(list) {
		return []*entity.User{}, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
