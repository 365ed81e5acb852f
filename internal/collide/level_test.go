package collide

import (
	"testing"

	"LaserRocket/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLevel(t *testing.T) *Level {
	t.Helper()
	level, err := NewLevel([]Brush{
		{Name: "wall", Mins: game.Vec3{X: 100, Y: -50, Z: 0}, Maxs: game.Vec3{X: 120, Y: 50, Z: 200}},
		{Name: "near_wall", Mins: game.Vec3{X: 60, Y: 100, Z: 0}, Maxs: game.Vec3{X: 80, Y: 200, Z: 200}},
		{Name: "skybox", Mins: game.Vec3{X: -5000, Y: -5000, Z: 4000}, Maxs: game.Vec3{X: 5000, Y: 5000, Z: 4100}, Sky: true},
		{Name: "pond", Mins: game.Vec3{X: -300, Y: -300, Z: -100}, Maxs: game.Vec3{X: -100, Y: -100, Z: 0}, Water: true},
	})
	require.NoError(t, err)
	return level
}

func TestTraceHitsNearestFace(t *testing.T) {
	level := testLevel(t)

	tr := level.TraceLine(game.Vec3{Z: 50}, game.Vec3{X: 200, Z: 50})
	require.True(t, tr.Hit())
	assert.InDelta(t, 0.5, tr.Fraction, 1e-12)
	assert.InDelta(t, 100, tr.EndPos.X, 1e-9)
	assert.Equal(t, game.Vec3{X: -1}, tr.Normal)
	assert.True(t, tr.HitWorld)
	assert.False(t, tr.Sky)
}

func TestTraceFromOtherSideUsesFarFace(t *testing.T) {
	level := testLevel(t)

	tr := level.TraceLine(game.Vec3{X: 300, Z: 50}, game.Vec3{Z: 50})
	require.True(t, tr.Hit())
	assert.InDelta(t, 120, tr.EndPos.X, 1e-9)
	assert.Equal(t, game.Vec3{X: 1}, tr.Normal)
}

func TestTraceMissesAndReportsEnd(t *testing.T) {
	level := testLevel(t)

	end := game.Vec3{X: 50, Y: 300, Z: 50}
	tr := level.TraceLine(game.Vec3{Z: 50}, end)
	assert.False(t, tr.Hit())
	assert.Equal(t, end, tr.EndPos)

	// a flat segment stopping short of the wall
	tr = level.TraceLine(game.Vec3{Z: 50}, game.Vec3{X: 99, Z: 50})
	assert.False(t, tr.Hit())
}

func TestTraceFlagsSky(t *testing.T) {
	level := testLevel(t)

	tr := level.TraceLine(game.Vec3{Z: 3000}, game.Vec3{Z: 5000})
	require.True(t, tr.Hit())
	assert.True(t, tr.Sky)
	assert.InDelta(t, 4000, tr.EndPos.Z, 1e-9)
}

func TestTraceStartingInsideIsAllSolid(t *testing.T) {
	level := testLevel(t)

	tr := level.TraceLine(game.Vec3{X: 110, Z: 50}, game.Vec3{X: 500, Z: 50})
	require.True(t, tr.Hit())
	assert.Equal(t, 0.0, tr.Fraction)
}

func TestWaterIsNotSolid(t *testing.T) {
	level := testLevel(t)

	assert.True(t, level.InWater(game.Vec3{X: -200, Y: -200, Z: -50}))
	assert.False(t, level.InWater(game.Vec3{X: -200, Y: -200, Z: 10}))
	tr := level.TraceLine(game.Vec3{X: -200, Y: -200, Z: 100}, game.Vec3{X: -200, Y: -200, Z: -90})
	assert.False(t, tr.Hit())
}

func TestRejectsInvertedBrush(t *testing.T) {
	_, err := NewLevel([]Brush{{Name: "bad", Mins: game.Vec3{X: 10}, Maxs: game.Vec3{X: 0, Y: 1, Z: 1}}})
	assert.Error(t, err)
}

func TestLevelDrivesRoomTraces(t *testing.T) {
	level := testLevel(t)
	r := game.NewRoom("level", game.DefaultGuidanceParams(), level)

	assert.False(t, r.Visible(game.Vec3{Z: 50}, game.Vec3{X: 300, Z: 50}, game.EntityID{}))
	assert.True(t, r.Visible(game.Vec3{Z: 50}, game.Vec3{X: 100, Z: 50}, game.EntityID{}))
	assert.True(t, r.InWater(game.Vec3{X: -150, Y: -150, Z: -1}))
	assert.Equal(t, 4, level.Len())
}
