package backoff

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestController_Sequence(t *testing.T) {
	c := NewController(60*time.Second, 300*time.Second)

	want := []time.Duration{60 * time.Second, 120 * time.Second, 240 * time.Second, 300 * time.Second, 300 * time.Second}
	for i, w := range want {
		n, d := c.Fail()
		assert.Equal(t, i+1, n)
		assert.Equal(t, w, d, "event %d", i+1)
	}

	assert.True(t, c.Succeed())
	assert.Equal(t, 0, c.Consecutive())

	n, d := c.Fail()
	assert.Equal(t, 1, n)
	assert.Equal(t, 60*time.Second, d)
}

func TestController_SucceedWithoutFailures(t *testing.T) {
	c := NewController(time.Second, time.Minute)
	assert.False(t, c.Succeed())
	assert.Equal(t, 0, c.Consecutive())
}

func TestController_Delay(t *testing.T) {
	c := NewController(60*time.Second, 300*time.Second)

	assert.Equal(t, time.Duration(0), c.Delay(0))
	assert.Equal(t, 60*time.Second, c.Delay(1))
	assert.Equal(t, 120*time.Second, c.Delay(2))
	assert.Equal(t, 240*time.Second, c.Delay(3))
	assert.Equal(t, 300*time.Second, c.Delay(4))
	// Large counters must not overflow.
	assert.Equal(t, 300*time.Second, c.Delay(200))
}

func TestController_BaseAboveMax(t *testing.T) {
	c := NewController(10*time.Minute, time.Minute)
	assert.Equal(t, time.Minute, c.Delay(1))
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(0, 0)
	assert.Equal(t, DefaultBase, c.Delay(1))
	assert.Equal(t, DefaultMax, c.Delay(10))
}

func TestJitter(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		j := Jitter(r, DefaultMaxJitter)
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, DefaultMaxJitter)
	}
	assert.Equal(t, time.Duration(0), Jitter(r, 0))
}
