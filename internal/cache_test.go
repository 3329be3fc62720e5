package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTieredCacheRoundtripInMemory(t *testing.T) {
	InitCache("", "", 0, "true")

	type entry struct {
		Name string `json:"name"`
		Id   int    `json:"id"`
	}

	key := "test-entry"
	SetTieredJSON(key, entry{Name: "Mill 1", Id: 1})

	var got entry
	require.True(t, GetTieredJSON(key, &got))
	assert.Equal(t, "Mill 1", got.Name)
	assert.Equal(t, 1, got.Id)

	InvalidateTiered(key)
	assert.False(t, GetTieredJSON(key, &got))
}

func TestAvailabilityIndexKeyIsStablePerWindow(t *testing.T) {
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	first := AvailabilityIndexKey(1, from, to)
	assert.Equal(t, first, AvailabilityIndexKey(1, from, to))
	assert.NotEqual(t, first, AvailabilityIndexKey(2, from, to))
	assert.NotEqual(t, first, AvailabilityIndexKey(1, from, to.AddDate(0, 0, 1)))
}

func TestInvalidateAvailabilityIndex(t *testing.T) {
	InitCache("", "", 0, "true")

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	key := AvailabilityIndexKey(1, from, from.AddDate(0, 0, 1))
	SetTieredJSON(key, []int{14, 15})
	SetTieredJSON(MachineListKey(), []int{1, 2})

	InvalidateAvailabilityIndex()

	var hours []int
	assert.False(t, GetTieredJSON(key, &hours))

	// unrelated keys survive
	var machines []int
	assert.True(t, GetTieredJSON(MachineListKey(), &machines))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "machine 1", SanitizeString("machine\t1"))
	assert.Equal(t, "nolinebreaks", SanitizeString("no\r\nline\nbreaks"))
}
