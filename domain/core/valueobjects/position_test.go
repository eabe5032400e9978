package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		wantErr bool
	}{
		{name: "origin", x: 0, y: 0},
		{name: "negative coordinates", x: -120.5, y: -300},
		{name: "NaN x", x: math.NaN(), y: 0, wantErr: true},
		{name: "infinite y", x: 0, y: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := NewPosition(tt.x, tt.y)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.x, pos.X())
				assert.Equal(t, tt.y, pos.Y())
			}
		})
	}
}

func TestPositionEquals(t *testing.T) {
	a, err := NewPosition(10, 20)
	require.NoError(t, err)
	b, err := NewPosition(10, 20)
	require.NoError(t, err)
	c, err := NewPosition(10, 21)
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestPositionTranslate(t *testing.T) {
	pos, err := NewPosition(100, 50)
	require.NoError(t, err)

	moved, err := pos.Translate(-20, 10)
	require.NoError(t, err)
	assert.Equal(t, 80.0, moved.X())
	assert.Equal(t, 60.0, moved.Y())

	// Original is unchanged.
	assert.Equal(t, 100.0, pos.X())
}

func TestPositionDistanceTo(t *testing.T) {
	a, _ := NewPosition(0, 0)
	b, _ := NewPosition(3, 4)

	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9)
}
