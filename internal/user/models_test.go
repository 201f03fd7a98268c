package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/pkg/platform/sentinel"
)

func TestNewUser(t *testing.T) {
	u, err := New("mayor@igorville.gov", "Igor", "Mayor", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, StatusActive, u.Status)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsRestricted())
	assert.NotEqual(t, "hunter22", u.PasswordHash, "password must never be stored in the clear")

	assert.True(t, u.CheckPassword("hunter22"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestRestrict(t *testing.T) {
	u, err := New("mayor@igorville.gov", "Igor", "Mayor", "hunter22")
	require.NoError(t, err)

	u.Restrict()
	assert.True(t, u.IsRestricted())
	u.Restrict()
	assert.True(t, u.IsRestricted(), "restricting twice stays restricted")
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Igor Mayor", (&User{FirstName: "Igor", LastName: "Mayor"}).FullName())
	assert.Equal(t, "Igor", (&User{FirstName: "Igor"}).FullName())
	assert.Equal(t, "Mayor", (&User{LastName: "Mayor"}).FullName())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, err := New("mayor@igorville.gov", "Igor", "Mayor", "hunter22")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, u))

	t.Run("finds by email case-insensitively", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "MAYOR@igorville.GOV")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
	})

	t.Run("unknown email returns ErrNotFound", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, "nobody@example.gov")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("stored record is isolated from caller mutation", func(t *testing.T) {
		u.Restrict()
		found, err := store.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, found.Status)
	})
}
