package timerecord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*3600)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 15, h, m, 0, 0, brt)
}

func TestRecord_ApplyClock(t *testing.T) {
	t.Run("two full shifts", func(t *testing.T) {
		var r Record
		require.NoError(t, r.ApplyClock(at(8, 0), DirectionIn))
		require.NoError(t, r.ApplyClock(at(12, 0), DirectionOut))
		require.NoError(t, r.ApplyClock(at(13, 0), DirectionIn))
		require.NoError(t, r.ApplyClock(at(17, 0), DirectionOut))
		assert.Equal(t, 480, r.TotalMinutes())
		assert.False(t, r.HasOpenShift())

		assert.ErrorIs(t, r.ApplyClock(at(18, 0), DirectionIn), ErrMaxShiftsReached)
		assert.ErrorIs(t, r.ApplyClock(at(18, 0), DirectionOut), ErrNoOpenCheckIn)
	})

	t.Run("check-in while open", func(t *testing.T) {
		var r Record
		require.NoError(t, r.ApplyClock(at(8, 0), DirectionIn))
		assert.ErrorIs(t, r.ApplyClock(at(8, 5), DirectionIn), ErrDuplicateClock)
		assert.True(t, r.HasOpenShift())
	})

	t.Run("check-out without check-in", func(t *testing.T) {
		var r Record
		assert.ErrorIs(t, r.ApplyClock(at(8, 0), DirectionOut), ErrNoOpenCheckIn)
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		var r Record
		require.NoError(t, r.ApplyClock(at(8, 0), DirectionIn))
		assert.ErrorIs(t, r.ApplyClock(at(7, 0), DirectionOut), ErrInvalidClockSequence)
	})

	t.Run("unknown direction", func(t *testing.T) {
		var r Record
		assert.ErrorIs(t, r.ApplyClock(at(8, 0), Direction("sideways")), ErrInvalidDirection)
	})
}

func TestRecord_TotalMinutes(t *testing.T) {
	in, out := at(8, 0), at(17, 0)
	r := Record{FirstIn: &in, FirstOut: &out, BreakMinutes: 60}
	assert.Equal(t, 480, r.TotalMinutes())

	r.BreakMinutes = 1000
	assert.Equal(t, 0, r.TotalMinutes())

	open := Record{FirstIn: &in}
	assert.Equal(t, 0, open.TotalMinutes())
}

func TestRecord_CheckSequence(t *testing.T) {
	in, out := at(8, 0), at(12, 0)
	in2, out2 := at(13, 0), at(17, 0)

	assert.NoError(t, Record{FirstIn: &in, FirstOut: &out, SecondIn: &in2, SecondOut: &out2}.CheckSequence())
	assert.ErrorIs(t, Record{FirstIn: &out, FirstOut: &in}.CheckSequence(), ErrInvalidClockSequence)
	assert.ErrorIs(t, Record{FirstOut: &out}.CheckSequence(), ErrNoOpenCheckIn)
	assert.ErrorIs(t, Record{FirstIn: &in, FirstOut: &out, SecondIn: &in, SecondOut: &out2}.CheckSequence(), ErrInvalidClockSequence)
}

func TestDateOf(t *testing.T) {
	// 01:30 UTC on the 16th is still the 15th in Brasília
	ts := time.Date(2024, 1, 16, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), DateOf(ts, brt))

	got := AtClock(DateOf(ts, brt), 8*60, brt)
	assert.Equal(t, at(8, 0), got)
}
