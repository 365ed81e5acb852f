package game

import "sort"

func updateMissiles(r *Room, dt float64) {
	world := r.World
	world.ForEach([]ComponentKey{CompMissile, CompTransform, CompBody}, func(id EntityID) {
		if world.DestroyedData(id) != nil {
			return
		}
		m := world.MissileData(id)
		tr := world.Transform(id)
		body := world.Body(id)
		if m.State == StateExploded {
			return
		}

		if m.InGrace && r.Now+TimeEpsilon >= m.GraceEndsAt {
			body.Solid &^= SolidNot
			m.InGrace = false
			m.GraceEndsAt = 0
		}

		if !m.thinking() || r.Now+TimeEpsilon < m.NextThink {
			return
		}
		r.think(id, tr, m, body)
	})
}

type sweepHit struct {
	frac   float64
	entity EntityID
	world  bool
}

// moveMissiles integrates missile flight and resolves touches along the swept
// segment in order. Non-solid missiles pass through everything.
func moveMissiles(r *Room, dt float64) {
	world := r.World
	world.ForEach([]ComponentKey{CompMissile, CompTransform, CompBody}, func(id EntityID) {
		if world.DestroyedData(id) != nil {
			return
		}
		m := world.MissileData(id)
		tr := world.Transform(id)
		body := world.Body(id)
		if m.Gravity {
			tr.Vel.Z -= r.params.Gravity * dt
		}
		start := tr.Pos
		delta := tr.Vel.Scale(dt)
		end := start.Add(delta)
		if !body.IsSolid() || delta.IsZero() {
			tr.Pos = end
			return
		}

		var hits []sweepHit
		if r.Tracer != nil {
			if wt := r.Tracer.TraceLine(start, end); wt.Hit() {
				hits = append(hits, sweepHit{frac: wt.Fraction, world: true})
			}
		}
		owner := world.OwnerOf(id)
		world.ForEach([]ComponentKey{CompBody, CompTransform}, func(other EntityID) {
			if other == id || other == owner || world.DestroyedData(other) != nil {
				return
			}
			if world.HasComponent(other, CompMissile) && world.OwnerOf(other) == owner {
				return
			}
			ob := world.Body(other)
			if ob.Solid&SolidNot != 0 && ob.Solid&(SolidTrigger|SolidVolumeContents) == 0 {
				return
			}
			if frac, ok := bodyEntry(world.Transform(other).Pos, ob, start, delta); ok && frac <= 1 {
				hits = append(hits, sweepHit{frac: frac, entity: other})
			}
		})
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].frac < hits[j].frac })

		for _, h := range hits {
			if !h.world && !r.missileTouch(m, h.entity) {
				continue
			}
			tr.Pos = start.MA(h.frac, delta)
			r.Explode(id)
			return
		}
		tr.Pos = end
	})
}

// moveBodies drifts plain bodies along their velocity.
func moveBodies(r *Room, dt float64) {
	world := r.World
	world.ForEach([]ComponentKey{CompBody, CompTransform}, func(id EntityID) {
		if world.HasComponent(id, CompMissile) || world.DestroyedData(id) != nil {
			return
		}
		tr := world.Transform(id)
		if tr.Vel.IsZero() {
			return
		}
		tr.Pos = tr.Pos.Add(tr.Vel.Scale(dt))
	})
}

func updateTrails(r *Room) {
	world := r.World
	world.ForEach([]ComponentKey{CompTrail, CompTransform}, func(id EntityID) {
		trail := world.Trail(id)
		tr := world.Transform(id)
		if world.Live(trail.Missile) {
			if mt := world.Transform(trail.Missile); mt != nil {
				tr.Pos = mt.Pos
			}
			return
		}
		if trail.Lifetime == 0 || r.Now+TimeEpsilon >= trail.BornAt+trail.Lifetime {
			r.RemoveEntity(id)
		}
	})
}

func recordHistory(r *Room) {
	world := r.World
	world.ForEach([]ComponentKey{CompHistory, CompTransform}, func(id EntityID) {
		hist := world.HistoryComponent(id)
		if hist.History == nil {
			return
		}
		tr := world.Transform(id)
		hist.History.push(Snapshot{T: r.Now, Pos: tr.Pos, Vel: tr.Vel})
	})
}

func sweepDestroyed(r *Room) {
	world := r.World
	world.ForEach([]ComponentKey{CompDestroyed}, func(id EntityID) {
		r.emit(Event{Kind: EventRemoved, Entity: id})
		world.RemoveEntity(id)
	})
}
