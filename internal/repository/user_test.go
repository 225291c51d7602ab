package repository

import (
	"context"
	"regexp"
	"testing"

	"atelier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		email        string
		mockBehavior func()
		expectedUser *models.User
	}{
		{
			name:  "Found",
			email: "ada@example.com",
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "ada", "ada@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("ada@example.com", 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "ada", Email: "ada@example.com"},
		},
		{
			name:  "Not Found Returns Nil",
			email: "ghost@example.com",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs("ghost@example.com", 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedUser: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByEmail(ctx, tt.email)

			assert.NoError(t, err)
			if tt.expectedUser == nil {
				assert.Nil(t, user)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
				assert.Equal(t, tt.expectedUser.Email, user.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Search(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(3, "painter_anna", "anna@example.com").
		AddRow(7, "painterly", "pat@example.com")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username LIKE $1 AND "users"."deleted_at" IS NULL ORDER BY username ASC LIMIT $2`)).
		WithArgs("%painter%", 20).
		WillReturnRows(rows)

	users, err := repo.Search(ctx, "painter", 20)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "painter_anna", users[0].Username)
	assert.Equal(t, "painterly", users[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
