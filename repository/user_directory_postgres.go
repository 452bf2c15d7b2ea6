// file: repository/user_directory_postgres.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/lib/pq"
)

// PostgresUserDirectory reads the users table directly. Used by deployments
// that co-locate the directory with the auth service instead of calling the
// remote user service.
type PostgresUserDirectory struct {
	DB *sql.DB
}

func NewPostgresUserDirectory(db *sql.DB) *PostgresUserDirectory {
	return &PostgresUserDirectory{DB: db}
}

func (r *PostgresUserDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	query := `SELECT id, email, password_hash, roles FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *PostgresUserDirectory) FindByID(ctx context.Context, id string) (*model.DirectoryUser, error) {
	query := `SELECT id, email, password_hash, roles FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *PostgresUserDirectory) scanUser(ctx context.Context, query string, arg string) (*model.DirectoryUser, error) {
	user := &model.DirectoryUser{}
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, pq.Array(&user.Roles))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to query user directory")
		return nil, fmt.Errorf("%w: user directory query: %v", common.ErrInfrastructure, err)
	}
	return user, nil
}
