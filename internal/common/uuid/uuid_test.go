package uuid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIsV7(t *testing.T) {
	u := New()
	assert.Equal(t, 7, int(u.Version()))
}

func TestParseRoundTrip(t *testing.T) {
	u := New()
	parsed, err := Parse(u.String())
	assert.NoError(t, err)
	assert.Equal(t, u, parsed)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}

func TestTimestampIsRecent(t *testing.T) {
	before := time.Now().Add(-time.Minute)
	u := New()
	after := time.Now().Add(time.Minute)

	ts := Timestamp(u)
	assert.True(t, ts.After(before), "timestamp %v too old", ts)
	assert.True(t, ts.Before(after), "timestamp %v in the future", ts)
}

func TestV7IsTimeOrdered(t *testing.T) {
	a := New()
	time.Sleep(2 * time.Millisecond)
	b := New()
	assert.Equal(t, -1, compare(a, b))
}

func compare(a, b UUID) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
