package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
)

func newTestAccessService(t *testing.T) (*AccessService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewAccessService(
		repository.NewAllowedUserRepository(db),
		repository.NewUserLoginRepository(db),
		nil,
	)
	return svc, db
}

func seedAllowedUser(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.AllowedUser{
		Name:  "jane doe",
		Email: "jane@example.com",
		Phone: "555-1234",
	}).Error)
}

func TestLoginMatchingRules(t *testing.T) {
	cases := []struct {
		name    string
		input   LoginInput
		allowed bool
	}{
		{
			name:    "exact match",
			input:   LoginInput{Name: "jane doe", Email: "jane@example.com", Phone: "555-1234"},
			allowed: true,
		},
		{
			name:    "name and email case insensitive",
			input:   LoginInput{Name: "Jane Doe", Email: "JANE@EXAMPLE.COM", Phone: "555-1234"},
			allowed: true,
		},
		{
			name:    "surrounding whitespace ignored",
			input:   LoginInput{Name: "  jane doe ", Email: " jane@example.com ", Phone: " 555-1234 "},
			allowed: true,
		},
		{
			name:    "phone must match exactly",
			input:   LoginInput{Name: "jane doe", Email: "jane@example.com", Phone: "5551234"},
			allowed: false,
		},
		{
			name:    "unknown email",
			input:   LoginInput{Name: "jane doe", Email: "john@example.com", Phone: "555-1234"},
			allowed: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := newTestAccessService(t)
			seedAllowedUser(t, db)

			err := svc.Login(context.Background(), tc.input)

			var count int64
			require.NoError(t, db.Model(&model.UserLogin{}).Count(&count).Error)
			if tc.allowed {
				require.NoError(t, err)
				assert.EqualValues(t, 1, count, "accepted login must be recorded")
			} else {
				assert.ErrorIs(t, err, ErrNotAllowed)
				assert.EqualValues(t, 0, count, "denied login must not be recorded")
			}
		})
	}
}

func TestLoginRecordsTrimmedValues(t *testing.T) {
	svc, db := newTestAccessService(t)
	seedAllowedUser(t, db)

	err := svc.Login(context.Background(), LoginInput{
		Name:  "  Jane Doe ",
		Email: " jane@example.com ",
		Phone: " 555-1234 ",
	})
	require.NoError(t, err)

	var login model.UserLogin
	require.NoError(t, db.First(&login).Error)
	assert.Equal(t, "Jane Doe", login.Name)
	assert.Equal(t, "jane@example.com", login.Email)
	assert.Equal(t, "555-1234", login.Phone)
}

func TestLoginRejectsBlankFields(t *testing.T) {
	svc, _ := newTestAccessService(t)

	err := svc.Login(context.Background(), LoginInput{Name: "jane", Email: "", Phone: "555"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginPublishesToAuditStream(t *testing.T) {
	db := newTestDB(t)
	audit := &fakeAuditPublisher{}
	svc := NewAccessService(
		repository.NewAllowedUserRepository(db),
		repository.NewUserLoginRepository(db),
		audit,
	)
	seedAllowedUser(t, db)

	err := svc.Login(context.Background(), LoginInput{
		Name: "jane doe", Email: "jane@example.com", Phone: "555-1234",
	})
	require.NoError(t, err)

	require.Len(t, audit.logins, 1)
	assert.Equal(t, "jane@example.com", audit.logins[0].Email)

	var count int64
	require.NoError(t, db.Model(&model.UserLogin{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAllowedUserAdministration(t *testing.T) {
	svc, _ := newTestAccessService(t)

	err := svc.AddAllowedUsers([]model.AllowedUser{
		{Name: "jane doe", Email: "jane@example.com", Phone: "555-1234"},
		{Name: "john roe", Email: "john@example.com", Phone: "555-9999"},
	})
	require.NoError(t, err)

	users, err := svc.ListAllowedUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, svc.RemoveAllowedUser("jane@example.com"))
	users, err = svc.ListAllowedUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "john@example.com", users[0].Email)
}

func TestAddAllowedUsersValidation(t *testing.T) {
	svc, _ := newTestAccessService(t)

	assert.ErrorIs(t, svc.AddAllowedUsers(nil), ErrInvalidInput)
	assert.ErrorIs(t, svc.AddAllowedUsers([]model.AllowedUser{
		{Name: "jane doe", Email: "", Phone: "555-1234"},
	}), ErrInvalidInput)
}
