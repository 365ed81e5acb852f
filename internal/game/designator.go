package game

import "math"

// Designator is a laser spot painted by a launcher.
type Designator struct {
	Pos     Vec3
	Normal  Vec3
	On      bool
	Visible bool
	Owner   EntityID
	Target  EntityID
}

// ChasePosition backs off the surface so missiles aim just in front of it.
func (d *Designator) ChasePosition() Vec3 {
	return d.Pos.Sub(d.Normal.Scale(DesignatorBackoff))
}

// DesignatorRegistry tracks every laser spot in a room in creation order.
type DesignatorRegistry struct {
	ids []EntityID
}

func (r *DesignatorRegistry) Insert(id EntityID) {
	for _, existing := range r.ids {
		if existing == id {
			return
		}
	}
	r.ids = append(r.ids, id)
}

func (r *DesignatorRegistry) Remove(id EntityID) {
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return
		}
	}
}

func (r *DesignatorRegistry) Len() int { return len(r.ids) }

func (r *DesignatorRegistry) IDs() []EntityID {
	return append([]EntityID(nil), r.ids...)
}

// FindNearestActive returns the closest lit designator belonging to owner.
func (r *DesignatorRegistry) FindNearestActive(w *World, origin Vec3, owner EntityID) (EntityID, float64, bool) {
	var best EntityID
	bestDist := math.Inf(1)
	for _, id := range r.ids {
		d := w.Designator(id)
		if d == nil || !d.On || d.Owner != owner {
			continue
		}
		dist := origin.DistTo(d.Pos)
		if dist < bestDist {
			best = id
			bestDist = dist
		}
	}
	if best.IsZero() {
		return EntityID{}, 0, false
	}
	return best, bestDist, true
}

// AnyActive reports whether owner has at least one lit designator.
func (r *DesignatorRegistry) AnyActive(w *World, owner EntityID) bool {
	for _, id := range r.ids {
		if d := w.Designator(id); d != nil && d.On && d.Owner == owner {
			return true
		}
	}
	return false
}

// CreateTargetDesignator spawns a lit laser spot and registers it.
func (r *Room) CreateTargetDesignator(origin Vec3, owner EntityID, visible bool) EntityID {
	id := r.World.NewEntity()
	r.World.SetComponent(id, CompDesignator, &Designator{
		Pos:     origin,
		On:      true,
		Visible: visible,
		Owner:   owner,
	})
	r.World.SetComponent(id, CompOwner, &OwnerComponent{Owner: owner})
	r.Designators.Insert(id)
	return id
}

func (r *Room) SetDesignatorTarget(id EntityID, target EntityID) {
	if d := r.World.Designator(id); d != nil {
		d.Target = target
	}
}

func (r *Room) EnableDesignator(id EntityID, on bool) {
	if d := r.World.Designator(id); d != nil {
		d.On = on
	}
}

// SetLaserPosition moves the spot to the latest trace hit.
func (r *Room) SetLaserPosition(id EntityID, pos, normal Vec3) {
	if d := r.World.Designator(id); d != nil {
		d.Pos = pos
		d.Normal = normal
	}
}

// designatorTarget resolves the locked target, dropping it once it dies.
func (r *Room) designatorTarget(d *Designator) EntityID {
	if d == nil || d.Target.IsZero() {
		return EntityID{}
	}
	if !r.World.Live(d.Target) {
		d.Target = EntityID{}
		return EntityID{}
	}
	return d.Target
}
