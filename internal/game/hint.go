package game

import (
	"log"
	"math"
)

// OBB is an oriented box: local Mins/Maxs around Origin along three unit axes.
type OBB struct {
	Origin Vec3
	Axes   [3]Vec3
	Mins   Vec3
	Maxs   Vec3
}

// AxisAlignedOBB builds a box with the world axes.
func AxisAlignedOBB(origin, mins, maxs Vec3) OBB {
	return OBB{
		Origin: origin,
		Axes:   [3]Vec3{{X: 1}, {Y: 1}, {Z: 1}},
		Mins:   mins,
		Maxs:   maxs,
	}
}

func (b OBB) Center() Vec3 {
	mid := b.Mins.Add(b.Maxs).Scale(0.5)
	return b.Origin.MA(mid.X, b.Axes[0]).MA(mid.Y, b.Axes[1]).MA(mid.Z, b.Axes[2])
}

// IntersectRay clips start+delta*t against the box and returns the entry and
// exit fractions, both clamped to [-1,1].
func (b OBB) IntersectRay(start, delta Vec3) (float64, float64, bool) {
	rel := start.Sub(b.Origin)
	lo := [3]float64{b.Mins.X, b.Mins.Y, b.Mins.Z}
	hi := [3]float64{b.Maxs.X, b.Maxs.Y, b.Maxs.Z}
	t1 := -1.0
	t2 := 1.0
	for i := 0; i < 3; i++ {
		s := rel.Dot(b.Axes[i])
		d := delta.Dot(b.Axes[i])
		if math.Abs(d) < 1e-12 {
			if s < lo[i] || s > hi[i] {
				return 0, 0, false
			}
			continue
		}
		a := (lo[i] - s) / d
		c := (hi[i] - s) / d
		if a > c {
			a, c = c, a
		}
		if a > t1 {
			t1 = a
		}
		if c < t2 {
			t2 = c
		}
		if t1 > t2 {
			return 0, 0, false
		}
	}
	if t2 < 0 || t1 > 1 {
		return 0, 0, false
	}
	return t1, t2, true
}

// AimHint marks a volume an enemy is expected to fly through.
type AimHint struct {
	Name       string
	TargetName string
	Target     EntityID
	Box        OBB
}

type AimHintRegistry struct {
	ids []EntityID
}

func (r *AimHintRegistry) Insert(id EntityID) {
	for _, existing := range r.ids {
		if existing == id {
			return
		}
	}
	r.ids = append(r.ids, id)
}

func (r *AimHintRegistry) Remove(id EntityID) {
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return
		}
	}
}

func (r *AimHintRegistry) Len() int { return len(r.ids) }

// FindAimTarget picks the target of the newest hint named hintName whose box
// the enemy will cross at about the time the missile could get there.
func (r *AimHintRegistry) FindAimTarget(w *World, missilePos, missileVel Vec3, hintName string, enemyPos, enemyVel Vec3) (EntityID, bool) {
	if hintName == "" {
		return EntityID{}, false
	}
	ooSpeed := missileVel.Len()
	if ooSpeed != 0 {
		ooSpeed = 1.0 / ooSpeed
	}
	for i := len(r.ids) - 1; i >= 0; i-- {
		hint := w.AimHint(r.ids[i])
		if hint == nil || hint.Name != hintName {
			continue
		}
		if !w.Live(hint.Target) {
			continue
		}
		toHint, distToHint := worldSpaceCenter(w, hint.Target).Sub(missilePos).Normalize()
		toEnemy, _ := enemyPos.Sub(missilePos).Normalize()
		if toHint.Dot(toEnemy) < HintCosThreshold {
			continue
		}
		t1, t2, ok := hint.Box.IntersectRay(enemyPos, enemyVel.Scale(HintHorizon))
		if !ok {
			continue
		}
		tSqr := distToHint * ooSpeed / HintHorizon
		if tSqr < t1*t1 || tSqr > t2*t2 {
			continue
		}
		return hint.Target, true
	}
	return EntityID{}, false
}

// CreateAimHint spawns a hint volume and activates it. A hint whose target
// name does not resolve stays inert.
func (r *Room) CreateAimHint(name, targetName string, box OBB) EntityID {
	id := r.World.NewEntity()
	hint := &AimHint{Name: name, TargetName: targetName, Box: box}
	r.World.SetComponent(id, CompAimHint, hint)
	r.World.SetComponent(id, CompTransform, &Transform{Pos: box.Center()})
	r.World.SetComponent(id, CompBody, &Body{Class: ClassAimHint, Name: name, Solid: SolidNot})
	r.activateAimHint(id, hint)
	return id
}

func (r *Room) activateAimHint(id EntityID, hint *AimHint) {
	target, ok := r.FindEntityByName(hint.TargetName)
	if !ok {
		log.Printf("%s %q: could not find target %q", ClassAimHint, hint.Name, hint.TargetName)
		return
	}
	hint.Target = target
	r.Hints.Insert(id)
}
