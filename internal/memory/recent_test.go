package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babble/internal/markov"
)

var _ markov.Memory = (*Recent)(nil)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestRecentWindowExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRecent(25, 10*time.Minute, WithClock(clock.now))

	r.Remember("chat", "hello there")
	assert.True(t, r.Seen("chat", "hello there"))
	assert.False(t, r.Seen("other", "hello there"))

	clock.t = clock.t.Add(9 * time.Minute)
	assert.True(t, r.Seen("chat", "hello there"))

	clock.t = clock.t.Add(2 * time.Minute)
	assert.False(t, r.Seen("chat", "hello there"))
}

func TestRecentZeroWindowNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	r := NewRecent(3, 0, WithClock(clock.now))
	r.Remember("s", "x")

	clock.t = clock.t.Add(365 * 24 * time.Hour)
	assert.True(t, r.Seen("s", "x"))
}

func TestRecentEvictsOldest(t *testing.T) {
	r := NewRecent(3, 0)
	for i := 0; i < 5; i++ {
		r.Remember("s", fmt.Sprintf("msg %d", i))
	}

	entries := r.Entries("s")
	require.Len(t, entries, 3)
	assert.Equal(t, "msg 2", entries[0].Text)
	assert.False(t, r.Seen("s", "msg 1"))
	assert.True(t, r.Seen("s", "msg 4"))
}

func TestRecentResetAndEmpty(t *testing.T) {
	r := NewRecent(0, -time.Second)
	r.Remember("s", "")
	assert.Empty(t, r.Entries("s"))

	r.Remember("s", "x")
	r.Reset("s")
	assert.False(t, r.Seen("s", "x"))
}
