package storage

import (
	"context"
	"errors"

	"github.com/qnetdash/quorum-dashboard-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Store captures the persistence operations needed by the auth handlers and
// the first-run bootstrap. Find* methods return users with roles populated.
type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// UpdateUserPassword replaces only the password hash of the given user.
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// CreateRoles bulk-inserts roles by name. Inserted ids are not returned;
	// callers resolve them afterwards with FindRoleByName.
	CreateRoles(ctx context.Context, names []string) error
	FindRoleByName(ctx context.Context, name string) (models.Role, error)
	AttachRole(ctx context.Context, userID, roleID int64) error

	CountNodes(ctx context.Context) (int64, error)
	// CreateNodes inserts all records atomically: either every node is
	// registered or none are.
	CreateNodes(ctx context.Context, nodes []models.Node) error
}
