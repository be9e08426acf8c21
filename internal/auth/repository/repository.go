package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrUsernameTaken = errors.New("username already taken")
)

const uniqueViolation = "23505"

const userColumns = `id, username, password_hash, full_name, phone, is_active, last_sign_in_at, created_at, updated_at`

const (
	getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	getUserByIDQuery       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	insertUserQuery        = `
		INSERT INTO users (username, password_hash, full_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	getUserRolesQuery = `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`
	listUsersQuery = `
		SELECT u.id, u.username, u.full_name, u.is_active,
			COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		GROUP BY u.id
		ORDER BY u.username`
	countKnownRolesQuery = `SELECT count(*) FROM roles WHERE name = ANY($1)`
	insertUserRolesQuery = `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = ANY($2)`
	deleteUserRolesQuery = `DELETE FROM user_roles WHERE user_id = $1`
	updatePasswordQuery  = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	touchLastSignInQuery = `UPDATE users SET last_sign_in_at = now() WHERE id = $1`
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, getUserByUsernameQuery, username))
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, getUserByIDQuery, userID))
}

// CreateUser inserts the user and its roles in one transaction.
func (r *Repository) CreateUser(ctx context.Context, params NewUser) (user User, err error) {
	roles := uniqueStrings(params.Roles)
	if len(roles) == 0 {
		return User{}, ErrInvalidRole
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	user, err = scanUser(tx.QueryRow(ctx, insertUserQuery, params.Username, params.PasswordHash, params.FullName, params.Phone))
	if err != nil {
		return User{}, err
	}
	if err = assignRoles(ctx, tx, user.ID, roles); err != nil {
		return User{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *Repository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, getUserRolesQuery, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SetUserRoles replaces the roles of a user.
func (r *Repository) SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) (err error) {
	roles = uniqueStrings(roles)
	if len(roles) == 0 {
		return ErrInvalidRole
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, deleteUserRolesQuery, userID); err != nil {
		return err
	}
	if err = assignRoles(ctx, tx, userID, roles); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) ListUsers(ctx context.Context) ([]UserWithRoles, error) {
	rows, err := r.pool.Query(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]UserWithRoles, 0)
	for rows.Next() {
		var user UserWithRoles
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.IsActive, &user.Roles); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, updatePasswordQuery, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) TouchLastSignIn(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, touchLastSignInQuery, userID)
	return err
}

func assignRoles(ctx context.Context, tx pgx.Tx, userID uuid.UUID, roles []string) error {
	var known int
	if err := tx.QueryRow(ctx, countKnownRolesQuery, roles).Scan(&known); err != nil {
		return err
	}
	if known != len(roles) {
		return ErrInvalidRole
	}
	_, err := tx.Exec(ctx, insertUserRolesQuery, userID, roles)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.IsActive,
		&user.LastSignInAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return User{}, ErrUsernameTaken
	}
	return user, err
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

// User is a row of the users table.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FullName     string
	Phone        *string
	IsActive     bool
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserWithRoles is a listing row.
type UserWithRoles struct {
	ID       uuid.UUID
	Username string
	FullName string
	IsActive bool
	Roles    []string
}

// NewUser holds the already validated fields of a user to create.
type NewUser struct {
	Username     string
	PasswordHash string
	FullName     string
	Phone        *string
	Roles        []string
}
