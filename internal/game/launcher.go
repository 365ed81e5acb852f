package game

import "errors"

var (
	ErrNoLauncher      = errors.New("launcher: not found")
	ErrNoOwner         = errors.New("launcher: owner is gone")
	ErrMissileInFlight = errors.New("launcher: missile already in flight")
	ErrReloading       = errors.New("launcher: reloading")
	ErrFireRate        = errors.New("launcher: not ready to fire")
	ErrNoAmmo          = errors.New("launcher: out of ammo")
)

// Launcher is the guided-missile weapon held by an actor. It owns at most one
// designator and one missile at a time.
type Launcher struct {
	Owner       EntityID
	Designator  EntityID
	Missile     EntityID
	Guiding     bool
	HideGuiding bool
	Ammo        int
	NextFireAt  float64
	ReloadUntil float64
	VisibleDot  bool
	APC         bool // fire the APC variant instead of the laser missile
	NPC         bool // always grant the longer NPC grace period
}

// CreateLauncher arms owner with a launcher holding ammo rounds.
func (r *Room) CreateLauncher(owner EntityID, ammo int) EntityID {
	id := r.World.NewEntity()
	r.World.SetComponent(id, CompLauncher, &Launcher{Owner: owner, Ammo: ammo, VisibleDot: true})
	r.World.SetComponent(id, CompOwner, &OwnerComponent{Owner: owner})
	r.World.SetComponent(id, CompBody, &Body{Class: ClassLauncher, Solid: SolidNot, Weapon: true})
	return id
}

func (r *Room) launcher(id EntityID) *Launcher {
	if !r.World.Live(id) {
		return nil
	}
	return r.World.Launcher(id)
}

// Ready reports whether Fire would currently succeed, ignoring the owner.
func (l *Launcher) Ready(w *World, now float64) error {
	if w.Live(l.Missile) {
		return ErrMissileInFlight
	}
	if now+TimeEpsilon < l.ReloadUntil {
		return ErrReloading
	}
	if now+TimeEpsilon < l.NextFireAt {
		return ErrFireRate
	}
	if l.Ammo <= 0 {
		return ErrNoAmmo
	}
	return nil
}

// Fire launches a missile from muzzle along angles. Clear shots get a short
// grace period so the missile cannot clip the shooter.
func (r *Room) Fire(launcherID EntityID, muzzle Vec3, angles Angles) (EntityID, error) {
	l := r.launcher(launcherID)
	if l == nil {
		return EntityID{}, ErrNoLauncher
	}
	if err := l.Ready(r.World, r.Now); err != nil {
		return EntityID{}, err
	}
	if !r.World.Live(l.Owner) {
		return EntityID{}, ErrNoOwner
	}
	l.NextFireAt = r.Now + LauncherFireInterval

	var id EntityID
	if l.APC {
		vel := angles.Forward().Scale(r.params.MissileSpeed)
		id = r.CreateAPCVariant(muzzle, angles, vel, l.Owner)
		r.IgniteDelay(id)
	} else {
		id = r.CreateGuidedProjectile(muzzle, angles, l.Owner)
	}
	if m := r.World.MissileData(id); m != nil {
		m.Launcher = launcherID
	}

	if l.NPC {
		r.SetGracePeriod(id, 0.5)
	} else {
		eye := worldSpaceCenter(r.World, l.Owner)
		if tr := r.TraceLine(eye, eye.MA(LauncherClearTrace, angles.Forward()), l.Owner); !tr.Hit() {
			r.SetGracePeriod(id, LauncherGracePeriod)
		}
	}
	l.Missile = id
	l.Ammo--
	r.emit(Event{Kind: EventSound, Entity: launcherID, Name: "Weapon_RPG.Single"})
	return id, nil
}

// StartGuiding lights the laser unless guiding is suppressed.
func (r *Room) StartGuiding(launcherID EntityID) {
	l := r.launcher(launcherID)
	if l == nil || l.HideGuiding {
		return
	}
	l.Guiding = true
	r.ensureDesignator(l)
	r.EnableDesignator(l.Designator, true)
}

// StopGuiding turns the laser off and removes the spot.
func (r *Room) StopGuiding(launcherID EntityID) {
	l := r.launcher(launcherID)
	if l == nil {
		return
	}
	l.Guiding = false
	if r.World.Exists(l.Designator) {
		r.EnableDesignator(l.Designator, false)
		r.World.RemoveEntity(l.Designator)
	}
	l.Designator = EntityID{}
}

func (r *Room) ToggleGuiding(launcherID EntityID) {
	l := r.launcher(launcherID)
	if l == nil {
		return
	}
	if l.Guiding {
		r.StopGuiding(launcherID)
	} else {
		r.StartGuiding(launcherID)
	}
}

// SuppressGuiding hides or restores the spot without dropping it.
func (r *Room) SuppressGuiding(launcherID EntityID, hide bool) {
	l := r.launcher(launcherID)
	if l == nil {
		return
	}
	l.HideGuiding = hide
	r.ensureDesignator(l)
	r.EnableDesignator(l.Designator, !hide)
}

func (r *Room) ensureDesignator(l *Launcher) {
	if r.World.Exists(l.Designator) {
		return
	}
	origin := Vec3{}
	if tr := r.World.Transform(l.Owner); tr != nil {
		origin = tr.Pos
	}
	l.Designator = r.CreateTargetDesignator(origin, l.Owner, l.VisibleDot)
}

// UpdateLaser traces from muzzle toward end and moves the spot to the hit.
// Damageable entities under the spot become its locked target.
func (r *Room) UpdateLaser(launcherID EntityID, muzzle, end Vec3) {
	l := r.launcher(launcherID)
	if l == nil || !r.World.Exists(l.Designator) {
		return
	}
	tr := r.TraceLine(muzzle, end, l.Owner)
	r.SetLaserPosition(l.Designator, tr.EndPos, tr.Normal)
	target := EntityID{}
	if !tr.Entity.IsZero() {
		if body := r.World.Body(tr.Entity); body != nil && body.TakeDamage != TakeDamageNo {
			target = tr.Entity
		}
	}
	r.SetDesignatorTarget(l.Designator, target)
}

// PaintTarget is the bot path: force the laser on and aim it at pos.
func (r *Room) PaintTarget(launcherID EntityID, muzzle, pos Vec3) {
	l := r.launcher(launcherID)
	if l == nil {
		return
	}
	r.ensureDesignator(l)
	l.Guiding = true
	r.EnableDesignator(l.Designator, true)
	dir, _ := pos.Sub(muzzle).Normalize()
	r.UpdateLaser(launcherID, muzzle, muzzle.MA(MaxTraceLength, dir))
}

// NotifyRocketDied frees the launcher for the next shot and starts a reload
// when rounds remain.
func (r *Room) NotifyRocketDied(launcherID EntityID) {
	l := r.launcher(launcherID)
	if l == nil {
		return
	}
	l.Missile = EntityID{}
	if r.Now+TimeEpsilon < l.ReloadUntil {
		return
	}
	if l.Ammo <= 0 {
		return
	}
	l.ReloadUntil = r.Now + r.params.ReloadSeconds
	r.emit(Event{Kind: EventSound, Entity: launcherID, Name: "Weapon_RPG.Reload"})
}

// AimAngles returns the launch angles from muzzle toward pos.
func AimAngles(muzzle, pos Vec3) Angles {
	dir := pos.Sub(muzzle)
	if dir.IsZero() {
		return Angles{}
	}
	return AnglesFromVector(dir)
}
