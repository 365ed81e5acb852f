package game

import "math"

type FlightState uint8

const (
	StateIgnite FlightState = iota
	StateAccelerate
	StateHome
	StateAuger
	StateExploded
	StateIgniteDelay
	StateAugerDelay
	StateExplodeDelay
	StateBallistic
)

var flightStateNames = [...]string{
	StateIgnite:       "ignite",
	StateAccelerate:   "accelerate",
	StateHome:         "home",
	StateAuger:        "auger",
	StateExploded:     "exploded",
	StateIgniteDelay:  "ignite_delay",
	StateAugerDelay:   "auger_delay",
	StateExplodeDelay: "explode_delay",
	StateBallistic:    "ballistic",
}

func (s FlightState) String() string {
	if int(s) < len(flightStateNames) {
		return flightStateNames[s]
	}
	return "unknown"
}

// MissileComponent is the flight state of a guided missile. The owner (the
// actor whose dots it follows) lives in the OwnerComponent; Launcher is the
// weapon that fired it.
type MissileComponent struct {
	Profile           GuidanceProfile
	State             FlightState
	NextThink         float64 // +Inf when nothing is scheduled
	Launcher          EntityID
	LaunchedAt        float64
	IgnitionTime      float64
	InGrace           bool
	GraceEndsAt       float64
	SpecificTarget    EntityID
	Hint              string
	GuidingDisabled   bool
	LastHomingSpeed   float64
	ReachedTargetTime float64
	AugerUntil        float64
	MarkDeadAt        float64
	Gravity           bool
	Trail             EntityID
}

func (m *MissileComponent) thinking() bool {
	return !math.IsInf(m.NextThink, 1)
}

func (r *Room) spawnMissile(class string, origin Vec3, angles Angles, vel Vec3, owner EntityID, profile GuidanceProfile) EntityID {
	id := r.World.NewEntity()
	r.World.SetComponent(id, CompTransform, &Transform{Pos: origin, Vel: vel, Angles: angles})
	r.World.SetComponent(id, CompBody, &Body{
		Class:      class,
		Mins:       Vec3{-2, -2, -2},
		Maxs:       Vec3{2, 2, 2},
		TakeDamage: TakeDamageYes,
		Health:     MissileHealth,
		MaxHealth:  MissileHealth,
	})
	r.World.SetComponent(id, CompOwner, &OwnerComponent{Owner: owner})
	history := newHistory(HistoryKeepS, SimHz)
	history.push(Snapshot{T: r.Now, Pos: origin, Vel: vel})
	r.World.SetComponent(id, CompHistory, &HistoryComponent{History: history})
	r.World.SetComponent(id, CompMissile, &MissileComponent{
		Profile:         profile,
		State:           StateIgnite,
		NextThink:       r.Now + r.params.IgniteDelay,
		LaunchedAt:      r.Now,
		LastHomingSpeed: r.params.HomingSpeed,
		Gravity:         true,
	})
	r.emit(Event{Kind: EventLaunched, Entity: id, Name: class, Pos: origin})
	return id
}

// CreateGuidedProjectile launches a laser-guided missile. It leaves the tube
// slowly with a small upward kick and ignites after the ignite delay.
func (r *Room) CreateGuidedProjectile(origin Vec3, angles Angles, owner EntityID) EntityID {
	vel := angles.Forward().Scale(r.params.LaunchSpeed).Add(Vec3{Z: r.params.LaunchLift})
	return r.spawnMissile(ClassMissile, origin, angles, vel, owner, LaserProfile(r.params))
}

// CreateAPCVariant launches a missile that leads its target and shapes its
// turn rate over distance and time.
func (r *Room) CreateAPCVariant(origin Vec3, angles Angles, vel Vec3, owner EntityID) EntityID {
	return r.spawnMissile(ClassAPCMissile, origin, angles, vel, owner, APCProfile(r.params))
}

func (r *Room) missile(id EntityID) (*MissileComponent, *Transform, *Body) {
	if !r.World.Live(id) {
		return nil, nil, nil
	}
	m := r.World.MissileData(id)
	if m == nil || m.State == StateExploded {
		return nil, nil, nil
	}
	return m, r.World.Transform(id), r.World.Body(id)
}

func (r *Room) setState(id EntityID, m *MissileComponent, s FlightState) {
	if m.State == s {
		return
	}
	m.State = s
	r.emit(Event{Kind: EventStateChange, Entity: id, Name: s.String()})
}

// SetGracePeriod makes the missile non-solid for the given seconds.
func (r *Room) SetGracePeriod(id EntityID, seconds float64) {
	m, _, body := r.missile(id)
	if m == nil {
		return
	}
	m.InGrace = true
	m.GraceEndsAt = r.Now + seconds
	body.Solid |= SolidNot
}

func (r *Room) SetGuidanceHint(id EntityID, name string) {
	if m, _, _ := r.missile(id); m != nil {
		m.Hint = name
	}
}

func (r *Room) AimAtSpecificTarget(id EntityID, target EntityID) {
	if m, _, _ := r.missile(id); m != nil {
		m.SpecificTarget = target
	}
}

// DisableGuiding makes the missile fly straight for the rest of its life.
func (r *Room) DisableGuiding(id EntityID) {
	if m, _, _ := r.missile(id); m != nil {
		m.GuidingDisabled = true
	}
}

// EnableFastMode makes the missile give up homing and fly straight at the
// give-up speed once its owner has no lit dot.
func (r *Room) EnableFastMode(id EntityID) {
	if m, _, _ := r.missile(id); m != nil {
		m.Profile.GiveUpSpeed = r.params.GiveUpSpeed
	}
}

// DumbFire stops all thinking; the missile flies straight on its current
// velocity until it hits something.
func (r *Room) DumbFire(id EntityID) {
	m, _, _ := r.missile(id)
	if m == nil {
		return
	}
	m.NextThink = math.Inf(1)
	m.Gravity = false
	r.setState(id, m, StateBallistic)
	r.emit(Event{Kind: EventSound, Entity: id, Name: "Missile.Ignite"})
	r.createTrail(id, m)
}

// IgniteDelay holds the missile non-solid until ignition, then starts homing.
func (r *Room) IgniteDelay(id EntityID) {
	m, _, body := r.missile(id)
	if m == nil {
		return
	}
	m.IgnitionTime = r.Now + r.params.IgniteDelay
	m.NextThink = m.IgnitionTime
	r.apcInit(id, m)
	body.Solid |= SolidNot
	r.setState(id, m, StateIgniteDelay)
}

// AugerDelay disables guidance and starts augering after delay seconds.
func (r *Room) AugerDelay(id EntityID, delay float64) {
	m, _, body := r.missile(id)
	if m == nil {
		return
	}
	m.IgnitionTime = r.Now
	m.NextThink = r.Now + delay
	r.apcInit(id, m)
	m.GuidingDisabled = true
	body.Solid |= SolidNot
	r.setState(id, m, StateAugerDelay)
}

// ExplodeDelay disables guidance and detonates after delay seconds.
func (r *Room) ExplodeDelay(id EntityID, delay float64) {
	m, _, body := r.missile(id)
	if m == nil {
		return
	}
	m.IgnitionTime = r.Now
	m.NextThink = r.Now + delay
	r.apcInit(id, m)
	m.GuidingDisabled = true
	body.Solid |= SolidNot
	r.setState(id, m, StateExplodeDelay)
}

func (r *Room) apcInit(id EntityID, m *MissileComponent) {
	m.Gravity = false
	m.LastHomingSpeed = r.params.APCHoming
	m.Profile.DangerSounds = true
	r.createTrail(id, m)
}

func (r *Room) createTrail(id EntityID, m *MissileComponent) {
	if r.World.Live(m.Trail) {
		return
	}
	tid := r.World.NewEntity()
	pos := r.World.Transform(id).Pos
	r.World.SetComponent(tid, CompTransform, &Transform{Pos: pos})
	r.World.SetComponent(tid, CompTrail, &TrailComponent{Missile: id, BornAt: r.Now})
	m.Trail = tid
}

// ApplyDamage routes damage to a missile or a plain body.
func (r *Room) ApplyDamage(id EntityID, info DamageInfo) {
	if m, _, body := r.missile(id); m != nil {
		r.damageMissile(id, m, body, info)
		return
	}
	if !r.World.Live(id) {
		return
	}
	body := r.World.Body(id)
	if body == nil || body.TakeDamage != TakeDamageYes {
		return
	}
	body.Health -= info.Amount
	if body.Health <= 0 {
		body.TakeDamage = TakeDamageNo
		r.emit(Event{Kind: EventKilled, Entity: id, Name: body.Class, Pos: r.World.Transform(id).Pos})
		r.World.SetComponent(id, CompDestroyed, &DestroyedComponent{DestroyedAt: r.Now})
	}
}

// damageMissile only counts missile-defense and airboat damage. Crossing the
// auger threshold shoots the missile down.
func (r *Room) damageMissile(id EntityID, m *MissileComponent, body *Body, info DamageInfo) {
	if info.Type&(DamageMissileDefense|DamageAirboat) == 0 {
		return
	}
	if body.TakeDamage != TakeDamageYes {
		return
	}
	threshold := body.MaxHealth - r.params.AugerMargin
	wasDamaged := body.Health <= threshold
	body.Health -= info.Amount
	killed := body.Health <= 0
	if killed {
		body.TakeDamage = TakeDamageNo
	}
	if killed || (!wasDamaged && body.Health <= threshold) {
		r.ShotDown(id)
	}
}

// ShotDown sends the missile into a damaged spiral and frees the launcher.
func (r *Room) ShotDown(id EntityID) {
	m, tr, _ := r.missile(id)
	if m == nil || m.State == StateAuger {
		return
	}
	r.emit(Event{Kind: EventEffect, Entity: id, Name: "RPGShotDown", Pos: tr.Pos})
	if trail := r.World.Trail(m.Trail); trail != nil {
		trail.Damaged = true
	}
	m.Gravity = false
	m.NextThink = r.Now
	m.AugerUntil = r.Now + r.params.AugerTimeout
	m.MarkDeadAt = r.Now + r.params.AugerDyingDelay
	r.setState(id, m, StateAuger)
	r.notifyLauncher(m)
}

func (r *Room) notifyLauncher(m *MissileComponent) {
	if !m.Launcher.IsZero() && r.World.Live(m.Launcher) {
		r.NotifyRocketDied(m.Launcher)
	}
	m.Launcher = EntityID{}
}

// Explode detonates and removes the missile. Against open sky only the
// fireball is skipped.
func (r *Room) Explode(id EntityID) {
	m, tr, body := r.missile(id)
	if m == nil {
		return
	}
	probe := r.TraceLine(tr.Pos, tr.Pos.MA(MissileSkyProbe, tr.Angles.Forward()), id)

	body.TakeDamage = TakeDamageNo
	body.Solid |= SolidNot
	if !probe.Hit() || !probe.Sky {
		r.doExplosion(id, m, tr)
	}

	if trail := r.World.Trail(m.Trail); trail != nil {
		trail.Lifetime = MissileTrailFadeS
		trail.BornAt = r.Now
		trail.Missile = EntityID{}
	}
	m.Trail = EntityID{}

	r.notifyLauncher(m)
	r.emit(Event{Kind: EventStopSound, Entity: id, Name: "Missile.Ignite"})
	m.NextThink = math.Inf(1)
	r.setState(id, m, StateExploded)
	r.World.SetComponent(id, CompDestroyed, &DestroyedComponent{DestroyedAt: r.Now})
}

func (r *Room) doExplosion(id EntityID, m *MissileComponent, tr *Transform) {
	if m.Profile.WaterEffect && r.InWater(tr.Pos) {
		r.emit(Event{
			Kind:      EventEffect,
			Entity:    id,
			Name:      "WaterSurfaceExplosion",
			Pos:       worldSpaceCenter(r.World, id),
			Magnitude: WaterExplosionMagnitude,
			Radius:    WaterExplosionMagnitude,
		})
		return
	}
	pos := tr.Pos
	if m.Profile.Mode == GuidanceLaser {
		pos.Z -= 1
		tr.Pos = pos
	}
	r.emit(Event{Kind: EventExplosion, Entity: id, Pos: pos, Magnitude: m.Profile.Damage, Radius: m.Profile.Radius})
	r.radiusDamage(pos, m.Profile.Damage, m.Profile.Radius, r.World.OwnerOf(id), id)
}

// radiusDamage applies linear-falloff blast damage around pos.
func (r *Room) radiusDamage(pos Vec3, damage, radius float64, attacker, inflictor EntityID) {
	if damage <= 0 || radius <= 0 {
		return
	}
	r.World.ForEach([]ComponentKey{CompBody, CompTransform}, func(id EntityID) {
		if id == inflictor || r.World.DestroyedData(id) != nil {
			return
		}
		dist := worldSpaceCenter(r.World, id).DistTo(pos)
		if dist >= radius {
			return
		}
		r.ApplyDamage(id, DamageInfo{
			Amount:   damage * (1 - dist/radius),
			Type:     DamageBlast,
			Attacker: attacker,
		})
	})
}

// missileTouch decides whether touching other ends the flight.
func (r *Room) missileTouch(m *MissileComponent, other EntityID) bool {
	body := r.World.Body(other)
	if body == nil {
		return true
	}
	if m.Profile.Mode == GuidanceAPC {
		return body.IsSolid() || body.Solid&SolidVolumeContents != 0
	}
	if body.Solid&(SolidTrigger|SolidVolumeContents) != 0 && !body.Weapon {
		if body.TakeDamage == TakeDamageNo || body.TakeDamage == TakeDamageEventsOnly {
			return false
		}
	}
	return true
}

// think runs the state handler for a missile whose think time has come.
func (r *Room) think(id EntityID, tr *Transform, m *MissileComponent, body *Body) {
	switch m.State {
	case StateIgnite:
		m.Gravity = false
		if !m.InGrace {
			body.Solid &^= SolidNot
		}
		r.emit(Event{Kind: EventSound, Entity: id, Name: "Missile.Ignite"})
		r.createTrail(id, m)
		m.IgnitionTime = r.Now
		m.NextThink = r.Now
		r.setState(id, m, StateAccelerate)
	case StateAccelerate:
		r.emit(Event{Kind: EventSound, Entity: id, Name: "Missile.Accelerate"})
		tr.Vel = tr.Angles.Forward().Scale(r.params.MissileSpeed)
		m.NextThink = r.Now + r.params.AccelerateDelay
		r.setState(id, m, StateHome)
	case StateHome:
		r.seek(id, tr, m)
		if m.State == StateHome && m.Profile.GiveUpSpeed > 0 && !r.Designators.AnyActive(r.World, r.World.OwnerOf(id)) {
			dir, _ := tr.Vel.Normalize()
			tr.Vel = dir.Scale(m.Profile.GiveUpSpeed)
			m.NextThink = math.Inf(1)
			r.setState(id, m, StateBallistic)
		}
	case StateAuger:
		r.auger(id, tr, m, body)
	case StateIgniteDelay:
		if !m.InGrace {
			body.Solid &^= SolidNot
		}
		m.NextThink = r.Now
		r.setState(id, m, StateHome)
	case StateAugerDelay:
		if !m.InGrace {
			body.Solid &^= SolidNot
		}
		if trail := r.World.Trail(m.Trail); trail != nil {
			trail.Damaged = true
		}
		m.AugerUntil = r.Now + APCAugerMinS + r.rng.Float64()*(APCAugerMaxS-APCAugerMinS)
		m.MarkDeadAt = r.Now + r.params.AugerDyingDelay
		m.NextThink = r.Now
		r.setState(id, m, StateAuger)
	case StateExplodeDelay:
		r.Explode(id)
	}
}

func (r *Room) auger(id EntityID, tr *Transform, m *MissileComponent, body *Body) {
	if r.Now+TimeEpsilon >= m.AugerUntil {
		r.Explode(id)
		return
	}
	if r.Now+TimeEpsilon >= m.MarkDeadAt {
		body.Dying = true
	}
	tr.Angles.Yaw += r.randRange(-AugerYawJitter, AugerYawJitter)
	tr.Angles.Pitch += r.randRange(AugerPitchMin, AugerPitchMax)
	tr.Vel = tr.Angles.Forward().Scale(AugerSpeed)
	m.NextThink = math.Min(r.Now+AugerInterval, m.AugerUntil)
}
