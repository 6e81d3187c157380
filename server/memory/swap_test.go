package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapArea(t *testing.T) {
	s := NewSwapArea(3)
	require.NoError(t, s.Push(1, 0))
	require.NoError(t, s.Push(2, 0))
	require.NoError(t, s.Push(1, 1))
	assert.True(t, s.Full())

	err := s.Push(3, 0)
	assert.ErrorIs(t, err, ErrSwapFull)
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Contains(3, 0))

	assert.True(t, s.Contains(1, 1))
	assert.False(t, s.Contains(2, 1))

	assert.Equal(t, 2, s.RemoveProcess(1))
	assert.Equal(t, []SwapEntry{{PID: 2, PageID: 0}}, s.Entries())
	assert.False(t, s.Contains(1, 0))
	assert.Equal(t, 0, s.RemoveProcess(1))

	require.NoError(t, s.Push(1, 0))
	assert.True(t, s.Contains(1, 0))
	assert.Equal(t, []SwapEntry{{PID: 2, PageID: 0}, {PID: 1, PageID: 0}}, s.Entries())
}

func TestEventLog(t *testing.T) {
	l := NewEventLog(EventLogCapacity)
	assert.Equal(t, "", l.Last())

	for i := 0; i < 25; i++ {
		l.Push(string(rune('a' + i)))
	}
	entries := l.Entries()
	require.Len(t, entries, EventLogCapacity)
	assert.Equal(t, "f", entries[0])
	assert.Equal(t, "y", entries[len(entries)-1])
	assert.Equal(t, "y", l.Last())
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]ReplacementPolicy{
		"fifo":  PolicyFIFO,
		"FIFO":  PolicyFIFO,
		"clock": PolicyClock,
		"Reloj": PolicyClock,
		" lru ": PolicyLRU,
		"3":     PolicyLRU,
	}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("mru")
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	text, err := PolicyClock.MarshalText()
	require.NoError(t, err)
	var p ReplacementPolicy
	require.NoError(t, p.UnmarshalText(text))
	assert.Equal(t, PolicyClock, p)
}

func TestPagesFor(t *testing.T) {
	assert.Equal(t, 3, PagesFor(250, 100))
	assert.Equal(t, 2, PagesFor(200, 100))
	assert.Equal(t, 1, PagesFor(1, 100))
	assert.Equal(t, 0, PagesFor(0, 100))
}
