// Package memory provides a mutex-guarded in-memory Store implementation.
// It backs unit tests and local development runs where Postgres is not
// available; semantics mirror the postgres implementation, including
// uniqueness conflicts and all-or-nothing node insertion.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/qnetdash/quorum-dashboard-be/internal/models"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	users     []models.User
	roles     []models.Role
	userRoles map[int64][]int64
	nodes     []models.Node
	nextUser  int64
	nextRole  int64
	nextNode  int64
}

func NewStore() *Store {
	return &Store{
		userRoles: make(map[int64][]int64),
		nextUser:  1,
		nextRole:  1,
		nextNode:  1,
	}
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return s.withRoles(u), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return s.withRoles(u), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username != "" && u.Username == username {
			return s.withRoles(u), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (user.Email != "" && u.Email == user.Email) ||
			(user.Username != "" && u.Username == user.Username) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	user.CreatedAt = time.Now()
	s.users = append(s.users, user)
	return s.withRoles(user), nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) CreateRoles(ctx context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		for _, r := range s.roles {
			if r.Name == name {
				return storage.ErrAlreadyExists
			}
		}
		s.roles = append(s.roles, models.Role{ID: s.nextRole, Name: name})
		s.nextRole++
	}
	return nil
}

func (s *Store) FindRoleByName(ctx context.Context, name string) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return models.Role{}, storage.ErrNotFound
}

func (s *Store) AttachRole(ctx context.Context, userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.userRoles[userID] {
		if existing == roleID {
			return nil
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

func (s *Store) CountNodes(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.nodes)), nil
}

func (s *Store) CreateNodes(ctx context.Context, nodes []models.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		n.ID = s.nextNode
		s.nextNode++
		s.nodes = append(s.nodes, n)
	}
	return nil
}

// Nodes returns a copy of the registered nodes, for assertions in tests.
func (s *Store) Nodes() []models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// withRoles is called with the lock held.
func (s *Store) withRoles(u models.User) models.User {
	var names []string
	for _, roleID := range s.userRoles[u.ID] {
		for _, r := range s.roles {
			if r.ID == roleID {
				names = append(names, r.Name)
			}
		}
	}
	u.Roles = names
	return u
}
