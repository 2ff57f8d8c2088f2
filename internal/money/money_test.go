package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumAvoidsFloatDrift(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 11800.0, Sum(10000, 900, 900))
}

func TestSub(t *testing.T) {
	assert.Equal(t, 6800.0, Sub(11800, 5000))
	assert.Equal(t, 0.0, Sub(11800, 5000, 6800))
	assert.Equal(t, -200.0, Sub(11800, 12000))
}

func TestPercentAndMul(t *testing.T) {
	assert.Equal(t, 1000.0, Percent(10000, 10))
	assert.Equal(t, 10.0, Percent(10000, 0.1))
	assert.Equal(t, 7.5, Mul(2.5, 3))
	assert.Equal(t, 33.33, Round2(33.333333))
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(0))
	assert.True(t, IsZero(0.001))
	assert.False(t, IsZero(0.01))
}
