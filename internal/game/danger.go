package game

// DangerSound is a short-lived warning bots can react to.
type DangerSound struct {
	Pos       Vec3
	Radius    float64
	ExpiresAt float64
	Owner     EntityID
}

// DangerSounds keeps one repeating slot per owner; a new insert from the same
// owner replaces the previous one.
type DangerSounds struct {
	sounds []DangerSound
}

func (d *DangerSounds) Insert(s DangerSound) {
	for i := range d.sounds {
		if !s.Owner.IsZero() && d.sounds[i].Owner == s.Owner {
			d.sounds[i] = s
			return
		}
	}
	d.sounds = append(d.sounds, s)
}

func (d *DangerSounds) Prune(now float64) {
	kept := d.sounds[:0]
	for _, s := range d.sounds {
		if s.ExpiresAt > now {
			kept = append(kept, s)
		}
	}
	d.sounds = kept
}

func (d *DangerSounds) Active(now float64) []DangerSound {
	var out []DangerSound
	for _, s := range d.sounds {
		if s.ExpiresAt > now {
			out = append(out, s)
		}
	}
	return out
}

// Near returns the active sounds whose radius covers pos.
func (d *DangerSounds) Near(pos Vec3, now float64) []DangerSound {
	var out []DangerSound
	for _, s := range d.sounds {
		if s.ExpiresAt <= now {
			continue
		}
		if pos.Sub(s.Pos).LenSqr() <= s.Radius*s.Radius {
			out = append(out, s)
		}
	}
	return out
}

func (r *Room) insertDanger(pos Vec3, radius, duration float64, owner EntityID) {
	r.Danger.Insert(DangerSound{Pos: pos, Radius: radius, ExpiresAt: r.Now + duration, Owner: owner})
	r.emit(Event{Kind: EventDanger, Entity: owner, Pos: pos, Radius: radius})
}
