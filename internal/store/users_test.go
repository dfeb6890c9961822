package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/model"
)

func createTestUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, email, email, "hash", model.RoleUser)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "jan@example.nl", "Jan", "hash123", model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "jan@example.nl", user.Email)
	assert.Equal(t, "Jan", user.Name)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Nil(t, user.DeletedAt)

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jan", got.Name)

	missing, err := GetUser(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestUser(t, database, "alice@example.nl")

	user, err := GetUserByEmail(ctx, database, "alice@example.nl")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.nl", user.Email)

	missing, err := GetUserByEmail(ctx, database, "bob@example.nl")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestUser(t, database, "dup@example.nl")
	_, err := CreateUser(ctx, database, "dup@example.nl", "Other", "hash", model.RoleUser)
	assert.Error(t, err)
}

func TestDeleteUserFreesEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "gone@example.nl")
	require.NoError(t, DeleteUser(ctx, database, user.ID))

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, users)

	missing, err := GetUserByEmail(ctx, database, "gone@example.nl")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// The email can be registered again once the old account is deleted.
	createTestUser(t, database, "gone@example.nl")
}

func TestUpdateUserRoleAndPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "pw@example.nl")
	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "newhash"))
	require.NoError(t, UpdateUserRole(ctx, database, user.ID, model.RoleAdmin))

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Equal(t, model.RoleAdmin, got.Role)
}

func TestUserDirectorySkipsDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	dir := UserDirectory{DB: database}

	user := createTestUser(t, database, "dir@example.nl")

	got, err := dir.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, DeleteUser(ctx, database, user.ID))

	got, err = dir.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
