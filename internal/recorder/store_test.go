package recorder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "flights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadFlight(t *testing.T) {
	s := openTestStore(t)

	f := &Flight{
		Room:       "alpha",
		Class:      "rpg_missile",
		Mode:       "laser",
		LaunchedAt: 1.5,
		EndedAt:    4.25,
		Outcome:    OutcomeExploded,
		Samples: []Sample{
			{T: 1.5, X: 10, State: "ignite"},
			{T: 1.6, X: 40, VX: 300, State: "home", Homing: 0.25},
		},
	}
	require.NoError(t, s.SaveFlight(f))
	require.NotEmpty(t, f.ID)

	got, err := s.LoadFlight(f.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Room)
	assert.Equal(t, "laser", got.Mode)
	assert.Equal(t, OutcomeExploded, got.Outcome)
	assert.InDelta(t, 4.25, got.EndedAt, 1e-12)
	assert.Equal(t, f.Samples, got.Samples)
}

func TestLoadUnknownFlightReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.LoadFlight("missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFlightsFiltersByRoom(t *testing.T) {
	s := openTestStore(t)

	for _, room := range []string{"alpha", "beta", "alpha"} {
		require.NoError(t, s.SaveFlight(&Flight{Room: room, Samples: []Sample{{T: 1}, {T: 2}}}))
	}

	all, err := s.ListFlights("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alpha, err := s.ListFlights("alpha", 10)
	require.NoError(t, err)
	require.Len(t, alpha, 2)
	for _, f := range alpha {
		assert.Equal(t, "alpha", f.Room)
		assert.Equal(t, 2, f.SampleCount)
	}

	limited, err := s.ListFlights("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDuplicateIDIsRejected(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveFlight(&Flight{ID: "fixed"}))
	assert.Error(t, s.SaveFlight(&Flight{ID: "fixed"}))
}
