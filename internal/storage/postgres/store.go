package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/qnetdash/quorum-dashboard-be/internal/models"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users, roles, and nodes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and applies pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrate(ctx, databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// migrate runs the embedded goose migrations over a short-lived
// database/sql connection; the pool itself stays on native pgx.
func migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

const userColumns = `
	u.id, COALESCE(u.email, ''), COALESCE(u.username, ''), u.password_hash, u.is_confirmed, u.created_at,
	(
		SELECT COALESCE(array_agg(r.name ORDER BY r.id), '{}')
		FROM user_roles ur
		JOIN roles r ON ur.role_id = r.id
		WHERE ur.user_id = u.id
	)`

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT` + userColumns + ` FROM users u WHERE u.email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT` + userColumns + ` FROM users u WHERE u.id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	query := `SELECT` + userColumns + ` FROM users u WHERE u.username = $1`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (email, username, password_hash, is_confirmed)
	VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4)
	RETURNING id, created_at`
	row := s.pool.QueryRow(ctx, query, user.Email, user.Username, user.PasswordHash, user.IsConfirmed)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateRoles(ctx context.Context, names []string) error {
	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(`INSERT INTO roles (name) VALUES ($1)`, name)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create roles: %w", err)
	}
	return nil
}

func (s *Store) FindRoleByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Role{}, storage.ErrNotFound
		}
		return models.Role{}, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (s *Store) AttachRole(ctx context.Context, userID, roleID int64) error {
	const query = `
	INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
	ON CONFLICT DO NOTHING`
	if _, err := s.pool.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("attach role: %w", err)
	}
	return nil
}

func (s *Store) CountNodes(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return count, nil
}

// CreateNodes inserts all records in one transaction: either the whole
// registry is created or none of it is.
func (s *Store) CreateNodes(ctx context.Context, nodes []models.Node) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
	INSERT INTO nodes (user_id, name, host, rpc_port, constellation_port, address, public_key, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, n := range nodes {
		_, err := tx.Exec(ctx, query,
			n.UserID, n.Name, n.Host, n.RPCPort, n.ConstellationPort, n.Address, n.PublicKey, n.Active)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Name, err)
		}
	}
	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.IsConfirmed, &user.CreatedAt, &user.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
