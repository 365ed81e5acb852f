package recorder

import (
	"log"

	"LaserRocket/internal/game"
)

const (
	// DefaultSampleInterval is the spacing between recorded points in seconds.
	DefaultSampleInterval = 0.1
	DefaultMaxSamples     = 2000

	OutcomeExploded = "exploded"
	OutcomeShotDown = "shot_down"
	OutcomeRemoved  = "removed"
	OutcomeInFlight = "in_flight"
)

// FlightSaver receives finished flights.
type FlightSaver interface {
	SaveFlight(f *Flight) error
}

type trackedFlight struct {
	flight     *Flight
	lastSample float64
	augered    bool
	exploded   bool
}

// Tracker turns a room's event stream and missile snapshots into recorded
// flights. It is fed from the tick loop and is not safe for concurrent use.
type Tracker struct {
	Room           string
	SampleInterval float64
	MaxSamples     int

	saver  FlightSaver
	active map[game.EntityID]*trackedFlight
}

func NewTracker(room string, saver FlightSaver) *Tracker {
	return &Tracker{
		Room:           room,
		SampleInterval: DefaultSampleInterval,
		MaxSamples:     DefaultMaxSamples,
		saver:          saver,
		active:         make(map[game.EntityID]*trackedFlight),
	}
}

// Active returns the number of flights still being recorded.
func (t *Tracker) Active() int { return len(t.active) }

// Observe consumes one tick worth of events followed by the current missile
// snapshots, and returns the flights that finished.
func (t *Tracker) Observe(now float64, events []game.Event, missiles []game.MissileSnapshot) []*Flight {
	var finished []*Flight
	for _, ev := range events {
		switch ev.Kind {
		case game.EventLaunched:
			t.active[ev.Entity] = &trackedFlight{
				flight: &Flight{
					Room:       t.Room,
					Class:      ev.Name,
					LaunchedAt: ev.T,
					Samples:    []Sample{{T: ev.T, X: ev.Pos.X, Y: ev.Pos.Y, Z: ev.Pos.Z}},
				},
				lastSample: ev.T,
			}
		case game.EventStateChange:
			if tf := t.active[ev.Entity]; tf != nil {
				if ev.Name == game.StateAuger.String() {
					tf.augered = true
				}
				tf.flight.Outcome = ev.Name
			}
		case game.EventExplosion:
			if tf := t.active[ev.Entity]; tf != nil {
				tf.exploded = true
				t.appendSample(tf, Sample{T: ev.T, X: ev.Pos.X, Y: ev.Pos.Y, Z: ev.Pos.Z, State: game.StateExploded.String()})
			}
		case game.EventRemoved:
			if tf := t.active[ev.Entity]; tf != nil {
				delete(t.active, ev.Entity)
				tf.flight.EndedAt = ev.T
				tf.flight.Outcome = outcomeOf(tf)
				finished = append(finished, tf.flight)
			}
		}
	}

	for _, snap := range missiles {
		tf := t.active[snap.ID]
		if tf == nil {
			continue
		}
		if tf.flight.Mode == "" {
			tf.flight.Mode = snap.Mode.String()
		}
		if now-tf.lastSample+1e-9 < t.SampleInterval {
			continue
		}
		tf.lastSample = now
		t.appendSample(tf, Sample{
			T:      now,
			X:      snap.Pos.X,
			Y:      snap.Pos.Y,
			Z:      snap.Pos.Z,
			VX:     snap.Vel.X,
			VY:     snap.Vel.Y,
			VZ:     snap.Vel.Z,
			State:  snap.State.String(),
			Homing: snap.Homing,
		})
	}

	t.save(finished)
	return finished
}

// Flush saves every flight still in the air, e.g. on shutdown.
func (t *Tracker) Flush(now float64) []*Flight {
	var out []*Flight
	for id, tf := range t.active {
		delete(t.active, id)
		tf.flight.EndedAt = now
		tf.flight.Outcome = OutcomeInFlight
		out = append(out, tf.flight)
	}
	t.save(out)
	return out
}

func (t *Tracker) appendSample(tf *trackedFlight, s Sample) {
	if t.MaxSamples > 0 && len(tf.flight.Samples) >= t.MaxSamples {
		return
	}
	tf.flight.Samples = append(tf.flight.Samples, s)
}

func (t *Tracker) save(flights []*Flight) {
	if t.saver == nil {
		return
	}
	for _, f := range flights {
		if err := t.saver.SaveFlight(f); err != nil {
			log.Printf("recorder: room %s: %v", t.Room, err)
		}
	}
}

func outcomeOf(tf *trackedFlight) string {
	switch {
	case tf.augered:
		return OutcomeShotDown
	case tf.exploded:
		return OutcomeExploded
	default:
		return OutcomeRemoved
	}
}
