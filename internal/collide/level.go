package collide

import (
	"fmt"
	"math"

	"LaserRocket/internal/game"

	"github.com/dhconnelly/rtreego"
)

const (
	treeMinChildren = 25
	treeMaxChildren = 50
	// padding so flat segments still overlap the boxes they touch
	boundsTolerance = 0.01
)

// Brush is an axis-aligned block of level geometry. Sky brushes stop
// traces like any other solid but report Sky on the hit; water brushes are
// not solid and only answer InWater.
type Brush struct {
	Name  string
	Mins  game.Vec3
	Maxs  game.Vec3
	Sky   bool
	Water bool

	rect rtreego.Rect
}

func (b *Brush) Bounds() rtreego.Rect {
	return b.rect
}

func (b *Brush) contains(p game.Vec3) bool {
	return p.X >= b.Mins.X && p.X <= b.Maxs.X &&
		p.Y >= b.Mins.Y && p.Y <= b.Maxs.Y &&
		p.Z >= b.Mins.Z && p.Z <= b.Maxs.Z
}

// Level answers line traces and water queries against static brushes.
type Level struct {
	solids  *rtreego.Rtree
	water   *rtreego.Rtree
	brushes []*Brush
}

func NewLevel(brushes []Brush) (*Level, error) {
	l := &Level{
		solids: rtreego.NewTree(3, treeMinChildren, treeMaxChildren),
		water:  rtreego.NewTree(3, treeMinChildren, treeMaxChildren),
	}
	for _, b := range brushes {
		if err := l.Add(b); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add indexes one more brush.
func (l *Level) Add(b Brush) error {
	lengths := []float64{b.Maxs.X - b.Mins.X, b.Maxs.Y - b.Mins.Y, b.Maxs.Z - b.Mins.Z}
	rect, err := rtreego.NewRect(rtreego.Point{b.Mins.X, b.Mins.Y, b.Mins.Z}, lengths)
	if err != nil {
		return fmt.Errorf("brush %q: %w", b.Name, err)
	}
	b.rect = rect
	brush := &b
	l.brushes = append(l.brushes, brush)
	if b.Water {
		l.water.Insert(brush)
	} else {
		l.solids.Insert(brush)
	}
	return nil
}

func (l *Level) Len() int { return len(l.brushes) }

// Brushes returns copies of the indexed brushes in insertion order.
func (l *Level) Brushes() []Brush {
	out := make([]Brush, len(l.brushes))
	for i, b := range l.brushes {
		out[i] = *b
	}
	return out
}

// TraceLine returns the first solid brush hit by the segment. A start point
// inside a brush hits at fraction 0.
func (l *Level) TraceLine(start, end game.Vec3) game.Trace {
	best := game.Trace{Fraction: 1, EndPos: end}
	delta := end.Sub(start)
	for _, s := range l.solids.SearchIntersect(segmentBounds(start, end)) {
		b := s.(*Brush)
		frac, normal, ok := slabEntry(b, start, delta)
		if !ok || frac >= best.Fraction {
			continue
		}
		best = game.Trace{
			Fraction: frac,
			EndPos:   start.MA(frac, delta),
			Normal:   normal,
			HitWorld: true,
			Sky:      b.Sky,
		}
	}
	return best
}

// InWater reports whether pos lies inside any water brush.
func (l *Level) InWater(pos game.Vec3) bool {
	p := rtreego.Point{pos.X, pos.Y, pos.Z}
	for _, s := range l.water.SearchIntersect(p.ToRect(boundsTolerance)) {
		if s.(*Brush).contains(pos) {
			return true
		}
	}
	return false
}

func segmentBounds(start, end game.Vec3) rtreego.Rect {
	lo := []float64{math.Min(start.X, end.X), math.Min(start.Y, end.Y), math.Min(start.Z, end.Z)}
	hi := []float64{math.Max(start.X, end.X), math.Max(start.Y, end.Y), math.Max(start.Z, end.Z)}
	corner := make(rtreego.Point, 3)
	lengths := make([]float64, 3)
	for i := range lo {
		corner[i] = lo[i] - boundsTolerance
		lengths[i] = hi[i] - lo[i] + 2*boundsTolerance
	}
	rect, _ := rtreego.NewRect(corner, lengths)
	return rect
}

// slabEntry clips start+delta*t against the brush and returns the entry
// fraction and the face normal it entered through.
func slabEntry(b *Brush, start, delta game.Vec3) (float64, game.Vec3, bool) {
	s := [3]float64{start.X, start.Y, start.Z}
	d := [3]float64{delta.X, delta.Y, delta.Z}
	lo := [3]float64{b.Mins.X, b.Mins.Y, b.Mins.Z}
	hi := [3]float64{b.Maxs.X, b.Maxs.Y, b.Maxs.Z}

	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	axis := -1
	sign := 0.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if s[i] < lo[i] || s[i] > hi[i] {
				return 0, game.Vec3{}, false
			}
			continue
		}
		t1 := (lo[i] - s[i]) / d[i]
		t2 := (hi[i] - s[i]) / d[i]
		faceSign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			faceSign = 1.0
		}
		if t1 > tEnter {
			tEnter = t1
			axis = i
			sign = faceSign
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, game.Vec3{}, false
		}
	}
	if tExit < 0 || tEnter > 1 {
		return 0, game.Vec3{}, false
	}
	if tEnter < 0 || axis < 0 {
		return 0, game.Vec3{}, true
	}
	n := [3]float64{}
	n[axis] = sign
	return tEnter, game.Vec3{X: n[0], Y: n[1], Z: n[2]}, true
}
