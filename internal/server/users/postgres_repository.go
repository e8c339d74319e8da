package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"credkeeper/internal/dbx"
	"credkeeper/internal/shared"
)

const userColumns = `id, name, email, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

// PostgresRepository implements Repository over a PostgreSQL users table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, shared.ErrorConflict
		}
		return nil, fmt.Errorf("%w: inserting user: %v", shared.ErrorTransient, err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: selecting user: %v", shared.ErrorTransient, err)
	}
	return user, nil
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("%w: setting reset token: %v", shared.ErrorTransient, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return shared.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearResetToken(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: clearing reset token: %v", shared.ErrorTransient, err)
	}
	return nil
}

// ConsumeResetToken locks the matching row inside a transaction so that two
// concurrent calls with the same token cannot both succeed.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*User, error) {
	var user *User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var id string
		selectQuery := `
			SELECT id FROM users
			WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
			FOR UPDATE
		`
		if err := tx.QueryRowContext(ctx, selectQuery, tokenHash).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return shared.ErrorInvalidToken
			}
			return fmt.Errorf("%w: selecting reset token: %v", shared.ErrorTransient, err)
		}

		updateQuery := `
			UPDATE users
			SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
			WHERE id = $1
			RETURNING ` + userColumns

		u, err := scanUser(tx.QueryRowContext(ctx, updateQuery, id, newPasswordHash))
		if err != nil {
			return fmt.Errorf("%w: consuming reset token: %v", shared.ErrorTransient, err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
