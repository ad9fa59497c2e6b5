package gantt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAlign(t *testing.T) {
	noon := time.Date(2024, 3, 6, 12, 30, 0, 0, time.UTC) // a wednesday

	assert.Equal(t, date(2024, 3, 6), align(noon, Day))
	assert.Equal(t, date(2024, 3, 4), align(noon, Week))
	assert.Equal(t, date(2024, 3, 1), align(noon, Month))
	assert.Equal(t, date(2024, 3, 4), align(date(2024, 3, 10), Week), "sunday belongs to the previous week")

	assert.Equal(t, date(2024, 3, 7), ceil(noon, Day))
	assert.Equal(t, date(2024, 3, 6), ceil(date(2024, 3, 6), Day))
	assert.Equal(t, date(2024, 4, 1), ceil(noon, Month))
}

func TestCells(t *testing.T) {
	assert.Equal(t, 16, cells(date(2024, 3, 3), date(2024, 3, 19), Day, 1))
	assert.Equal(t, 8, cells(date(2024, 3, 3), date(2024, 3, 19), Day, 2))
	assert.Equal(t, 4, cells(date(2024, 2, 26), date(2024, 3, 25), Week, 1))
	assert.Equal(t, 3, cells(date(2024, 1, 1), date(2024, 3, 15), Month, 1))
	assert.Equal(t, 0, cells(date(2024, 1, 1), date(2024, 1, 1), Day, 1))
}

func TestPosition(t *testing.T) {
	start := date(2024, 3, 1)

	assert.InDelta(t, 2.0, position(start, date(2024, 3, 3), Day, 1), 1e-9)
	assert.InDelta(t, 2.5, position(start, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), Day, 1), 1e-9)
	assert.InDelta(t, 1.0, position(start, date(2024, 4, 1), Month, 1), 1e-9)
	assert.InDelta(t, 1.5, position(start, date(2024, 4, 16), Month, 1), 1e-9)
	assert.InDelta(t, -1.0, position(start, date(2024, 2, 29), Day, 1), 1e-9)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("week")
	assert.NoError(t, err)
	assert.Equal(t, Week, u)

	u, err = ParseUnit("")
	assert.NoError(t, err)
	assert.Equal(t, Day, u)

	_, err = ParseUnit("fortnight")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
