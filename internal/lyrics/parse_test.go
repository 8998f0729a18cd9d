package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSynced(t *testing.T) {
	raw := "[00:01.50] hello\n[00:03.00]\ngarbage\n[00:05.25] world"

	lines := ParseSynced(raw)
	require.Len(t, lines, 3)

	assert.Equal(t, 1.5, lines[0].TimeSeconds)
	assert.Equal(t, "hello", lines[0].Text)

	// a bare timestamp is a kept instrumental gap, not a dropped line
	assert.Equal(t, 3.0, lines[1].TimeSeconds)
	assert.Equal(t, "", lines[1].Text)

	assert.Equal(t, 5.25, lines[2].TimeSeconds)
	assert.Equal(t, "world", lines[2].Text)
}

func TestParseSyncedMinutes(t *testing.T) {
	lines := ParseSynced("[02:30.00] chorus")
	require.Len(t, lines, 1)
	assert.Equal(t, 150.0, lines[0].TimeSeconds)
}

func TestParseSyncedEmptyInput(t *testing.T) {
	assert.Nil(t, ParseSynced(""))
}

func TestParseSyncedNothingParseable(t *testing.T) {
	lines := ParseSynced("just\nplain\ntext")
	assert.Empty(t, lines)
}

func TestParseSyncedRequiresFractionalSeconds(t *testing.T) {
	// [mm:ss] without a fraction does not match the timestamp shape
	lines := ParseSynced("[00:05] no fraction\n[00:06.00] with fraction")
	require.Len(t, lines, 1)
	assert.Equal(t, "with fraction", lines[0].Text)
}
