package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ConnectDisconnect(t *testing.T) {
	d := NewDirectory(zerolog.Nop())
	id := uuid.New()

	_, ok := d.NameByID(id)
	assert.False(t, ok)

	d.Connect(id, "Steve")
	name, ok := d.NameByID(id)
	require.True(t, ok)
	assert.Equal(t, "Steve", name)
	assert.Equal(t, []uuid.UUID{id}, d.Online())

	d.Disconnect(id)
	_, ok = d.NameByID(id)
	assert.False(t, ok)
	assert.Empty(t, d.Online())
}

func TestDirectory_RemembersNamesAfterDisconnect(t *testing.T) {
	d := NewDirectory(zerolog.Nop())
	id := uuid.New()

	d.Connect(id, "Steve")
	d.Disconnect(id)

	got, ok := d.IDByName("steve")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestDirectory_NameLookupIsCaseInsensitive(t *testing.T) {
	d := NewDirectory(zerolog.Nop())
	id := uuid.New()
	d.Connect(id, "Steve")

	got, ok := d.IDByName("STEVE")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = d.IDByName("Alex")
	assert.False(t, ok)
}
