package game

// DetonationZone forces a missile to blow up on entry. A zero HalfHeight
// makes it a sphere, otherwise an upright cylinder.
type DetonationZone struct {
	Entity     EntityID
	RadiusSq   float64
	HalfHeight float64
}

type DetonationZones struct {
	zones []DetonationZone
}

func (z *DetonationZones) Add(entity EntityID, radius, height float64) {
	z.zones = append(z.zones, DetonationZone{
		Entity:     entity,
		RadiusSq:   radius * radius,
		HalfHeight: height * 0.5,
	})
}

// Remove drops the first zone registered for entity.
func (z *DetonationZones) Remove(entity EntityID) bool {
	for i := range z.zones {
		if z.zones[i].Entity == entity {
			z.zones = append(z.zones[:i], z.zones[i+1:]...)
			return true
		}
	}
	return false
}

func (z *DetonationZones) Len() int { return len(z.zones) }

func (z *DetonationZones) Zones() []DetonationZone {
	return append([]DetonationZone(nil), z.zones...)
}

// ScanAndCheck walks newest to oldest, pruning zones whose entity is gone,
// and returns the first zone containing pos.
func (z *DetonationZones) ScanAndCheck(w *World, pos Vec3) (EntityID, bool) {
	for i := len(z.zones) - 1; i >= 0; i-- {
		zone := z.zones[i]
		if !w.Live(zone.Entity) {
			z.zones = append(z.zones[:i], z.zones[i+1:]...)
			continue
		}
		center := worldSpaceCenter(w, zone.Entity)
		if zone.HalfHeight > 0 {
			dz := pos.Z - center.Z
			if dz < 0 {
				dz = -dz
			}
			if dz < zone.HalfHeight && pos.Sub(center).Len2DSqr() < zone.RadiusSq {
				return zone.Entity, true
			}
			continue
		}
		if pos.Sub(center).LenSqr() < zone.RadiusSq {
			return zone.Entity, true
		}
	}
	return EntityID{}, false
}

func (r *Room) AddDetonationZone(entity EntityID, radius, height float64) {
	r.Zones.Add(entity, radius, height)
}

func (r *Room) RemoveDetonationZone(entity EntityID) {
	r.Zones.Remove(entity)
}
