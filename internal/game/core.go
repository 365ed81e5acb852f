package game

import (
	"math"
	"sync"
)

type Snapshot struct {
	T   float64
	Pos Vec3
	Vel Vec3
}

type History struct {
	buf   []Snapshot
	head  int
	size  int
	mu    sync.RWMutex
	limit int
}

type Vec3 struct{ X, Y, Z float64 }

func (a Vec3) Add(b Vec3) Vec3       { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3       { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Dot(b Vec3) float64    { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Dot2D(b Vec3) float64  { return a.X*b.X + a.Y*b.Y }
func (a Vec3) LenSqr() float64       { return a.Dot(a) }
func (a Vec3) Len() float64          { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Len2DSqr() float64     { return a.X*a.X + a.Y*a.Y }
func (a Vec3) Scale(s float64) Vec3  { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) IsZero() bool          { return a.X == 0 && a.Y == 0 && a.Z == 0 }
func (a Vec3) Flat() Vec3            { return Vec3{a.X, a.Y, 0} }
func (a Vec3) DistTo(b Vec3) float64 { return a.Sub(b).Len() }

// MA returns a + b*s.
func (a Vec3) MA(s float64, b Vec3) Vec3 {
	return a.Add(b.Scale(s))
}

// Normalize returns the unit vector and the original length. A zero vector
// comes back unchanged with length 0.
func (a Vec3) Normalize() (Vec3, float64) {
	l := a.Len()
	if l == 0 {
		return a, 0
	}
	return a.Scale(1.0 / l), l
}

func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t, a.Z + (b.Z-a.Z)*t}
}

// Angles are pitch/yaw/roll in degrees. Positive pitch points down.
type Angles struct{ Pitch, Yaw, Roll float64 }

// Forward returns the unit heading for the angles.
func (a Angles) Forward() Vec3 {
	p := a.Pitch * math.Pi / 180
	y := a.Yaw * math.Pi / 180
	sp, cp := math.Sincos(p)
	sy, cy := math.Sincos(y)
	return Vec3{cp * cy, cp * sy, -sp}
}

// AnglesFromVector is the inverse of Forward for non-zero vectors.
func AnglesFromVector(v Vec3) Angles {
	if v.X == 0 && v.Y == 0 {
		if v.Z > 0 {
			return Angles{Pitch: 270}
		}
		return Angles{Pitch: 90}
	}
	yaw := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	pitch := math.Atan2(-v.Z, math.Hypot(v.X, v.Y)) * 180 / math.Pi
	if pitch < 0 {
		pitch += 360
	}
	return Angles{Pitch: pitch, Yaw: yaw}
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SimpleSplineRemapVal maps val from [a,b] into [c,d] through a 3x²-2x³
// ease curve. Values outside [a,b] are not clamped.
func SimpleSplineRemapVal(val, a, b, c, d float64) float64 {
	if a == b {
		if val >= b {
			return d
		}
		return c
	}
	x := (val - a) / (b - a)
	return c + (d-c)*(3*x*x-2*x*x*x)
}

// PointOnLineNearestPoint projects p onto the infinite line through a and b.
func PointOnLineNearestPoint(a, b, p Vec3) Vec3 {
	dir := b.Sub(a)
	lenSq := dir.LenSqr()
	if lenSq == 0 {
		return a
	}
	t := p.Sub(a).Dot(dir) / lenSq
	return a.MA(t, dir)
}

func newHistory(seconds float64, hz float64) *History {
	n := int(seconds*hz) + 4
	return &History{buf: make([]Snapshot, n), limit: n}
}

func (h *History) push(s Snapshot) {
	h.mu.Lock()
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.limit
	if h.size < h.limit {
		h.size++
	}
	h.mu.Unlock()
}

func (h *History) GetAt(t float64) (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	bestAfter := -1
	bestBefore := -1
	var sAfter, sBefore Snapshot
	for i := 0; i < h.size; i++ {
		idx := (h.head - 1 - i + h.limit) % h.limit
		s := h.buf[idx]
		if s.T >= t {
			sAfter = s
			bestAfter = idx
		}
		if s.T <= t {
			sBefore = s
			bestBefore = idx
			break
		}
	}
	if bestBefore == -1 {
		earliest := h.buf[(h.head-h.size+h.limit)%h.limit]
		return earliest, true
	}
	if bestAfter == -1 {
		latest := h.buf[(h.head-1+h.limit)%h.limit]
		return latest, true
	}
	a := sBefore
	b := sAfter
	if b.T == a.T {
		return a, true
	}
	alpha := (t - a.T) / (b.T - a.T)
	return Snapshot{
		T:   t,
		Pos: a.Pos.Lerp(b.Pos, alpha),
		Vel: a.Vel.Lerp(b.Vel, alpha),
	}, true
}

// Latest returns the most recent sample.
func (h *History) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	return h.buf[(h.head-1+h.limit)%h.limit], true
}
