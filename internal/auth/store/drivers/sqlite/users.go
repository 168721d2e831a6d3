package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/domain"
)

type usersRepo struct {
	q queryer
}

const userColumns = `id, username, preferred_name, password_hash, role,
	two_factor_on, two_factor_secret, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, preferred_name, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PreferredName, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET two_factor_secret = ?, updated_at = ? WHERE id = ?`,
		mapOptionalString(&secret), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET two_factor_on = ?, updated_at = ? WHERE id = ?`,
		now, now, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET two_factor_on = NULL, two_factor_secret = NULL, updated_at = ?
		 WHERE id = ?`, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow converts a zero-row UPDATE into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u      domain.User
		on     sql.NullTime
		secret sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PreferredName, &u.PasswordHash, &u.Role,
		&on, &secret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.TwoFactorOn = mapNullTimePtr(on)
	u.TwoFactorSecret = mapNullStringPtr(secret)
	return u, nil
}
