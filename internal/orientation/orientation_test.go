package orientation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/parallax/internal/rotation"
)

func TestComputePoseFromAccel(t *testing.T) {
	flat := ComputePoseFromAccel(0, 0, 16384)
	assert.InDelta(t, 0.0, flat.Roll, 1e-9)
	assert.InDelta(t, 0.0, flat.Pitch, 1e-9)
	assert.Equal(t, 0.0, flat.Yaw)

	rolled := ComputePoseFromAccel(0, 1000, 1000)
	assert.InDelta(t, 45.0, rolled.Roll, 1e-9)

	pitched := ComputePoseFromAccel(-1000, 0, 1000)
	assert.InDelta(t, 45.0, pitched.Pitch, 1e-9)
}

func TestPoseRotationVectorIsUnit(t *testing.T) {
	for _, p := range []Pose{{}, {Roll: 30}, {Pitch: -20, Yaw: 90}, {Roll: 10, Pitch: 20, Yaw: 30}} {
		v := p.RotationVector()
		require.Len(t, v, 4)
		norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2] + v[3]*v[3])
		assert.InDelta(t, 1.0, norm, 1e-12, "pose %+v", p)
	}
	assert.Equal(t, []float64{0, 0, 0, 1}, Pose{}.RotationVector())
}

func TestPoseRotationVectorMatchesAngleChange(t *testing.T) {
	ref := rotation.Identity()

	var cur rotation.Matrix
	require.NoError(t, cur.SetFromVector(Pose{Pitch: 30}.RotationVector()))

	var angles [3]float64
	rotation.AngleChange(&angles, &cur, &ref)
	assert.InDelta(t, 30*math.Pi/180, angles[rotation.Roll], 1e-9)
	assert.InDelta(t, 0.0, angles[rotation.Pitch], 1e-9)
}

func TestMockSource(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newMockSource(func() time.Time { return now })

	p, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Pose{}, p)

	quarter := math.Pi / 2
	now = now.Add(time.Duration(quarter * float64(time.Second)))
	p, err = src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, p.Roll, 1e-6)
	assert.LessOrEqual(t, math.Abs(p.Pitch), 15.0)
	assert.LessOrEqual(t, math.Abs(p.Yaw), 5.0)
}
