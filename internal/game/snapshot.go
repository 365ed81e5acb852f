package game

import "sort"

type MissileSnapshot struct {
	ID       EntityID
	Class    string
	Owner    EntityID
	Launcher EntityID
	Mode     GuidanceMode
	State    FlightState
	Pos      Vec3
	Vel      Vec3
	Angles   Angles
	Health   float64
	Homing   float64
	Guided   bool
}

type DesignatorSnapshot struct {
	ID      EntityID
	Owner   EntityID
	Target  EntityID
	Pos     Vec3
	On      bool
	Visible bool
}

type BodySnapshot struct {
	ID     EntityID
	Class  string
	Name   string
	Pos    Vec3
	Vel    Vec3
	Mins   Vec3
	Maxs   Vec3
	Health float64
	Team   int
	Dying  bool
}

type RoomSnapshot struct {
	Now         float64
	Missiles    []MissileSnapshot
	Designators []DesignatorSnapshot
	Bodies      []BodySnapshot
	Dangers     []DangerSound
}

// MissileSnapshotsLocked lists live missiles. The caller must hold r.Mu.
func (r *Room) MissileSnapshotsLocked() []MissileSnapshot {
	var out []MissileSnapshot
	r.World.ForEach([]ComponentKey{CompMissile, CompTransform, CompBody}, func(id EntityID) {
		if r.World.DestroyedData(id) != nil {
			return
		}
		m := r.World.MissileData(id)
		tr := r.World.Transform(id)
		body := r.World.Body(id)
		out = append(out, MissileSnapshot{
			ID:       id,
			Class:    body.Class,
			Owner:    r.World.OwnerOf(id),
			Launcher: m.Launcher,
			Mode:     m.Profile.Mode,
			State:    m.State,
			Pos:      tr.Pos,
			Vel:      tr.Vel,
			Angles:   tr.Angles,
			Health:   body.Health,
			Homing:   m.LastHomingSpeed,
			Guided:   !m.GuidingDisabled,
		})
	})
	return out
}

// SnapshotLocked captures everything a viewer draws. The caller must hold r.Mu.
func (r *Room) SnapshotLocked() RoomSnapshot {
	snap := RoomSnapshot{
		Now:      r.Now,
		Missiles: r.MissileSnapshotsLocked(),
		Dangers:  r.Danger.Active(r.Now),
	}
	for _, id := range r.Designators.IDs() {
		d := r.World.Designator(id)
		if d == nil {
			continue
		}
		snap.Designators = append(snap.Designators, DesignatorSnapshot{
			ID:      id,
			Owner:   d.Owner,
			Target:  d.Target,
			Pos:     d.Pos,
			On:      d.On,
			Visible: d.Visible,
		})
	}
	r.World.ForEach([]ComponentKey{CompBody, CompTransform}, func(id EntityID) {
		if r.World.DestroyedData(id) != nil || r.World.HasComponent(id, CompMissile) {
			return
		}
		body := r.World.Body(id)
		if body.Class == ClassAimHint {
			return
		}
		tr := r.World.Transform(id)
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			ID:     id,
			Class:  body.Class,
			Name:   body.Name,
			Pos:    tr.Pos,
			Vel:    tr.Vel,
			Mins:   body.Mins,
			Maxs:   body.Maxs,
			Health: body.Health,
			Team:   body.Team,
			Dying:  body.Dying,
		})
	})
	sort.Slice(snap.Designators, func(i, j int) bool { return snap.Designators[i].ID.Index < snap.Designators[j].ID.Index })
	return snap
}
