package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", d.String())
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = ParseDate("02/01/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseDate("2024-13-40")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), tod)
	assert.Equal(t, "09:30", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseTimeOfDay("9am")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDateAt(t *testing.T) {
	d := NewDate(2024, time.January, 2)
	tod, _ := ParseTimeOfDay("14:45")
	assert.Equal(t, time.Date(2024, 1, 2, 14, 45, 0, 0, time.UTC), d.At(tod))
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: 540, End: 570} // 09:00-09:30
	b := Interval{Start: 570, End: 600} // 09:30-10:00 back-to-back
	c := Interval{Start: 555, End: 585} // 09:15-09:45

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
	assert.True(t, a.Overlaps(a))
}

func TestJSONMarshalling(t *testing.T) {
	type payload struct {
		Date  Date      `json:"date"`
		Start TimeOfDay `json:"start"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-06-01","start":"08:15"}`), &p))
	assert.Equal(t, "2024-06-01", p.Date.String())
	assert.Equal(t, "08:15", p.Start.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-01","start":"08:15"}`, string(out))

	err = json.Unmarshal([]byte(`{"date":"not-a-date"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
