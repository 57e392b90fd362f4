package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
)

func seedUser(t *testing.T, repo *Repository, email string, role enums.UserRole, createdAt time.Time) uuid.UUID {
	t.Helper()
	created, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	})
	require.NoError(t, err)
	require.NoError(t, repo.db.Exec("UPDATE users SET created_at = ? WHERE id = ?", createdAt, created.ID).Error)
	return created.ID
}

func TestServiceListUsersFiltersByRole(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	seedUser(t, repo, "customer@example.com", enums.RoleCustomer, base)
	staffID := seedUser(t, repo, "staff@example.com", enums.RoleDealerStaff, base.Add(time.Minute))

	role := enums.RoleDealerStaff
	list, err := svc.ListUsers(context.Background(), ListInput{
		Filters: ListFilters{Role: &role},
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, staffID, list.Users[0].ID)
	assert.Empty(t, list.NextCursor)
}

func TestServiceListUsersPaginates(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		seedUser(t, repo, email, enums.RoleCustomer, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.ListUsers(context.Background(), ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Users, 2)
	require.NotEmpty(t, first.NextCursor)

	rest, err := svc.ListUsers(context.Background(), ListInput{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Users, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestServiceSetUserActiveSuspendsAccount(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	id := seedUser(t, repo, "suspend@example.com", enums.RoleCustomer, time.Now().UTC())

	updated, err := svc.SetUserActive(context.Background(), id, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	reloaded, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestServiceSetUserActiveRefusesAdminSuspension(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	id := seedUser(t, repo, "admin@example.com", enums.RoleAdmin, time.Now().UTC())

	_, err = svc.SetUserActive(context.Background(), id, false)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestServiceSetUserActiveUnknownUser(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.SetUserActive(context.Background(), uuid.New(), false)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
