package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32Clamped(t *testing.T) {
	assert.Equal(t, int32(42), IntToInt32Clamped(42))
	assert.Equal(t, int32(math.MaxInt32), IntToInt32Clamped(math.MaxInt32+10))
	assert.Equal(t, int32(math.MinInt32), IntToInt32Clamped(math.MinInt32-10))
}

func TestIntToUintClamped(t *testing.T) {
	assert.Equal(t, uint(7), IntToUintClamped(7))
	assert.Equal(t, uint(0), IntToUintClamped(-3))
}
