package postgres

import (
	"context"
	"database/sql"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

const userColumns = `id, username, email, password_hash, is_admin, is_active, created_at`

// UserStore implements store.UserStore.
type UserStore struct {
	db *sql.DB
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore opens the identity database and runs its migrations.
func NewUserStore(databaseURL string) (*UserStore, error) {
	db, err := open(databaseURL, "users")
	if err != nil {
		return nil, err
	}
	return &UserStore{db: db}, nil
}

func (s *UserStore) Close() error                   { return s.db.Close() }
func (s *UserStore) Ping(ctx context.Context) error { return ping(ctx, s.db) }

func (s *UserStore) CreateUser(ctx context.Context, u *model.User) error {
	return queryCreateUser(ctx, s.db, u)
}

func (s *UserStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return queryGetUser(ctx, s.db, id)
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return queryGetUserByUsername(ctx, s.db, username)
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	return queryListUsers(ctx, s.db)
}

func (s *UserStore) DeactivateUser(ctx context.Context, id int64) error {
	return queryDeactivateUser(ctx, s.db, id)
}

func queryCreateUser(ctx context.Context, db executor, u *model.User) error {
	row := db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
		u.IsActive,
	)
	return mapError(row.Scan(&u.ID, &u.CreatedAt))
}

func queryGetUser(ctx context.Context, db executor, id int64) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func queryGetUserByUsername(ctx context.Context, db executor, username string) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func queryListUsers(ctx context.Context, db executor) ([]*model.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY username COLLATE "C"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func queryDeactivateUser(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
