package game

// Trace is the result of a line query.
type Trace struct {
	Fraction float64
	EndPos   Vec3
	Normal   Vec3
	Entity   EntityID // zero when the hit is level geometry
	HitWorld bool
	Sky      bool
}

func (t Trace) Hit() bool { return t.Fraction < 1 }

// Tracer answers queries against static level geometry.
type Tracer interface {
	TraceLine(start, end Vec3) Trace
	InWater(pos Vec3) bool
}

type DamageType uint32

const (
	DamageGeneric DamageType = 0
	DamageBullet  DamageType = 1 << iota
	DamageBlast
	DamageMissileDefense
	DamageAirboat
)

type DamageInfo struct {
	Amount   float64
	Type     DamageType
	Attacker EntityID
}

type EventKind string

const (
	EventEffect      EventKind = "effect"
	EventSound       EventKind = "sound"
	EventStopSound   EventKind = "stop_sound"
	EventExplosion   EventKind = "explosion"
	EventDanger      EventKind = "danger"
	EventStateChange EventKind = "state"
	EventLaunched    EventKind = "launched"
	EventRemoved     EventKind = "removed"
	EventKilled      EventKind = "killed"
)

// Event is a side effect the host may present. The simulation never reads
// events back.
type Event struct {
	Kind      EventKind
	T         float64
	Entity    EntityID
	Name      string
	Pos       Vec3
	Magnitude float64
	Radius    float64
}

const maxPendingEvents = 4096

func (r *Room) emit(ev Event) {
	ev.T = r.Now
	if len(r.events) >= maxPendingEvents {
		r.events = r.events[1:]
	}
	r.events = append(r.events, ev)
}

// DrainEventsLocked hands over and clears the pending events. The caller
// must hold r.Mu.
func (r *Room) DrainEventsLocked() []Event {
	out := r.events
	r.events = nil
	return out
}

// TraceLine queries level geometry and solid entity bodies, skipping ignore,
// its owner and anything ignore owns.
func (r *Room) TraceLine(start, end Vec3, ignore EntityID) Trace {
	best := Trace{Fraction: 1, EndPos: end}
	if r.Tracer != nil {
		best = r.Tracer.TraceLine(start, end)
		if !best.Hit() {
			best.EndPos = end
		}
	}
	delta := end.Sub(start)
	ignoreOwner := r.World.OwnerOf(ignore)
	r.World.ForEach([]ComponentKey{CompBody, CompTransform}, func(id EntityID) {
		if id == ignore || (!ignoreOwner.IsZero() && id == ignoreOwner) {
			return
		}
		if !ignore.IsZero() && r.World.OwnerOf(id) == ignore {
			return
		}
		if r.World.DestroyedData(id) != nil {
			return
		}
		body := r.World.Body(id)
		if !body.IsSolid() || body.Solid&(SolidTrigger|SolidVolumeContents) != 0 {
			return
		}
		t1, ok := bodyEntry(r.World.Transform(id).Pos, body, start, delta)
		if !ok || t1 >= best.Fraction {
			return
		}
		best = Trace{
			Fraction: t1,
			EndPos:   start.MA(t1, delta),
			Normal:   delta.Scale(-1),
			Entity:   id,
		}
		best.Normal, _ = best.Normal.Normalize()
	})
	return best
}

// InWater reports whether pos is inside a water volume.
func (r *Room) InWater(pos Vec3) bool {
	if r.Tracer == nil {
		return false
	}
	return r.Tracer.InWater(pos)
}

// bodyEntry returns the entry fraction of the segment into the body's box.
func bodyEntry(pos Vec3, body *Body, start, delta Vec3) (float64, bool) {
	box := AxisAlignedOBB(pos, body.Mins, body.Maxs)
	t1, _, ok := box.IntersectRay(start, delta)
	if !ok {
		return 0, false
	}
	if t1 < 0 {
		t1 = 0
	}
	return t1, true
}
