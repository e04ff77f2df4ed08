package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewNamedTimer("edges")
	assert.Equal(t, "edges", timer.Name())

	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())

	str := timer.String()
	assert.Contains(t, str, "edges")
	assert.Contains(t, str, "ms")
}

func TestTimer_Unnamed(t *testing.T) {
	timer := NewTimer()
	assert.Empty(t, timer.Name())
	timer.Stop()
	assert.NotEmpty(t, timer.String())
}

func TestBudget_Exceeded(t *testing.T) {
	b := StartBudget(5 * time.Millisecond)
	assert.False(t, b.Exceeded())

	time.Sleep(10 * time.Millisecond)
	assert.True(t, b.Exceeded())
	assert.Equal(t, time.Duration(0), b.Remaining())
}

func TestBudget_Unlimited(t *testing.T) {
	for _, limit := range []time.Duration{0, -time.Second} {
		b := StartBudget(limit)
		time.Sleep(time.Millisecond)
		assert.False(t, b.Exceeded())
	}
}

func TestBudget_Remaining(t *testing.T) {
	b := StartBudget(time.Hour)
	r := b.Remaining()
	assert.Greater(t, r, 59*time.Minute)
	assert.LessOrEqual(t, r, time.Hour)
	assert.Greater(t, b.Elapsed(), time.Duration(0))
}
