package m

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalUUID(t *testing.T) {
	t.Parallel()

	canonical, err := CanonicalUUID("bb9b450bdc414e5eaafd57bcfbf98617")
	require.NoError(t, err)
	assert.Equal(t, "bb9b450b-dc41-4e5e-aafd-57bcfbf98617", canonical)

	// Case is preserved.
	canonical, err = CanonicalUUID("BB9B450BDC414E5EAAFD57BCFBF98617")
	require.NoError(t, err)
	assert.Equal(t, "BB9B450B-DC41-4E5E-AAFD-57BCFBF98617", canonical)
}

func TestCanonicalUUIDGroups(t *testing.T) {
	t.Parallel()

	for n := 0; n < 1000; n++ {
		compact := strings.ReplaceAll(uuid.NewString(), "-", "")

		canonical, err := CanonicalUUID(compact)
		require.NoError(t, err)

		groups := strings.Split(canonical, "-")
		require.Len(t, groups, 5)
		for i, group := range groups {
			assert.Len(t, group, uuidGroups[i], "group #%d of %s", i+1, canonical)
		}
		assert.Equal(t, compact, strings.Join(groups, ""))
	}
}

func TestCanonicalUUIDErrors(t *testing.T) {
	t.Parallel()

	for _, compact := range []string{
		"",
		"bb9b450b",
		"bb9b450bdc414e5eaafd57bcfbf9861",
		"bb9b450bdc414e5eaafd57bcfbf986170",
		"bb9b450b-dc41-4e5e-aafd-57bcfbf98617",
		"zz9b450bdc414e5eaafd57bcfbf98617",
	} {
		_, err := CanonicalUUID(compact)
		assert.ErrorIs(t, err, ErrFormat, "%q should be rejected", compact)
	}
}

func TestValidUsername(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidUsername("alice"))
	assert.True(t, ValidUsername("Notch"))
	assert.True(t, ValidUsername("player_123"))
	assert.True(t, ValidUsername(strings.Repeat("a", 16)))

	assert.False(t, ValidUsername(""))
	assert.False(t, ValidUsername("##invalid##"))
	assert.False(t, ValidUsername("with space"))
	assert.False(t, ValidUsername(strings.Repeat("a", 17)))
}
