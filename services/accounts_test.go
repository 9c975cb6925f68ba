package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/models"
)

func newAccounts(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	//Token到期由jwt套件以實際時間檢查，這裡使用實際時間
	return NewAccountService(db, newTestTokens(t), nil), db
}

func register(t *testing.T, accounts *AccountService, username string) *models.User {
	t.Helper()
	user, err := accounts.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidateUsername("budi_01"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("has space"))

	assert.True(t, ValidateEmail("budi@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))

	assert.True(t, ValidatePassword("secret123"))
	assert.False(t, ValidatePassword("short1"))
	assert.False(t, ValidatePassword("lettersonly"))
	assert.False(t, ValidatePassword("12345678"))
	assert.False(t, ValidatePassword("secret 123"))
}

func TestRegister(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()

	user := register(t, accounts, "budi")
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	_, err := accounts.Register(ctx, RegisterInput{Username: "budi", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = accounts.Register(ctx, RegisterInput{Username: "other", Email: "BUDI@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = accounts.Register(ctx, RegisterInput{Username: "weak", Email: "weak@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	accounts, db := newAccounts(t)
	ctx := context.Background()
	user := register(t, accounts, "budi")

	_, err := accounts.Login(ctx, "budi", "wrong-password1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = accounts.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	session, err := accounts.Login(ctx, "budi", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, int64(1), countRows(t, db, &models.LoginToken{}))

	actor, err := accounts.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, models.RoleCustomer, actor.Role)

	require.NoError(t, accounts.Logout(ctx, session.Token))
	_, err = accounts.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, accounts.Logout(ctx, session.Token), ErrNotFound)

	_, err = accounts.Authenticate(ctx, "garbage")
	assert.Error(t, err)
}

func TestSetRole(t *testing.T) {
	accounts, db := newAccounts(t)
	ctx := context.Background()
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	user := register(t, accounts, "budi")

	session, err := accounts.Login(ctx, "budi", "secret123")
	require.NoError(t, err)

	_, err = accounts.SetRole(ctx, customerActor(user), user.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	promoted, err := accounts.SetRole(ctx, adminActor(admin), user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	//變更角色後舊的Token失效
	_, err = accounts.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = accounts.SetRole(ctx, adminActor(admin), admin.ID, models.RoleCustomer)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = accounts.SetRole(ctx, adminActor(admin), user.ID, "ROOT")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = accounts.SetRole(ctx, adminActor(admin), 9999, models.RoleCustomer)
	assert.ErrorIs(t, err, ErrNotFound)

	users, total, err := accounts.ListUsers(ctx, adminActor(admin), Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}

func TestUpdateProfile(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()
	user := register(t, accounts, "budi")
	register(t, accounts, "siti")

	_, err := accounts.UpdateProfile(ctx, user.ID, ProfilePatch{OldPassword: "wrong"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = accounts.UpdateProfile(ctx, user.ID, ProfilePatch{OldPassword: "secret123", Email: "siti@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	name := "Budi Santoso"
	address := ""
	updated, err := accounts.UpdateProfile(ctx, user.ID, ProfilePatch{
		OldPassword: "secret123",
		NewPassword: "newsecret456",
		Name:        &name,
		Address:     &address,
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", updated.Name)
	assert.Equal(t, models.RoleCustomer, updated.Role)

	_, err = accounts.Login(ctx, "budi", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = accounts.Login(ctx, "budi", "newsecret456")
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()

	created, isNew, err := accounts.EnsureAdmin(ctx, RegisterInput{Username: "root", Email: "root@example.com", Password: "adminpass1"})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, models.RoleAdmin, created.Role)

	register(t, accounts, "budi")
	promoted, isNew, err := accounts.EnsureAdmin(ctx, RegisterInput{Username: "budi"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}
