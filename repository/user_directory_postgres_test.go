// file: repository/user_directory_postgres_test.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/common"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostgresUserDirectory_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "roles"}).
		AddRow("user-1", "a@x.com", "$2a$14$hash", "{ROLE_USER,ROLE_ADMIN}")
	mock.ExpectQuery(`SELECT id, email, password_hash, roles FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	dir := NewPostgresUserDirectory(db)
	user, err := dir.FindByEmail(context.Background(), "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, user.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserDirectory_FindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, password_hash, roles FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	dir := NewPostgresUserDirectory(db)
	user, err := dir.FindByID(context.Background(), "ghost")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserDirectory_QueryErrorIsInfrastructure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, password_hash, roles FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("connection reset"))

	dir := NewPostgresUserDirectory(db)
	_, err = dir.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, common.ErrInfrastructure)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
