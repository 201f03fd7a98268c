package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRequestID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		parsed, err := ParseUserID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), parsed)
		assert.False(t, parsed.IsNil())
	})

	t.Run("nil UUID parses but reports IsNil", func(t *testing.T) {
		parsed, err := ParseDomainID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, parsed.IsNil())
	})
}

func TestIDRoundTrip(t *testing.T) {
	requestID := NewRequestID()
	parsed, err := ParseRequestID(requestID.String())
	require.NoError(t, err)
	assert.Equal(t, requestID, parsed)
}

// TestTypeDistinction verifies distinct ID types do not collapse into one
// another. The real check is at compile time; casting across types requires
// going through uuid.UUID explicitly.
func TestTypeDistinction(t *testing.T) {
	userID := NewUserID()
	domainID := NewDomainID()
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(domainID))
}

func TestZeroValueIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.True(t, RequestID{}.IsNil())
	assert.True(t, DomainID{}.IsNil())
	assert.True(t, PortfolioID{}.IsNil())
	assert.True(t, SuborgID{}.IsNil())
	assert.True(t, AgencyID{}.IsNil())
}
