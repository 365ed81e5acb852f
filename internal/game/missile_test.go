package game

import (
	"math"
	"testing"
)

// TestMissileIgnitesThenHomes walks the launch sequence tick by tick.
func TestMissileIgnitesThenHomes(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateGuidedProjectile(Vec3{}, Angles{}, owner)

	tickN(r, 17)
	m := r.World.MissileData(id)
	if m.State != StateIgnite || !m.Gravity {
		t.Fatalf("expected unpowered flight, got state %s gravity %v", m.State, m.Gravity)
	}
	if vz := r.World.Transform(id).Vel.Z; vz >= MissileLaunchLift {
		t.Fatalf("expected gravity to pull the missile down, vz=%v", vz)
	}

	r.Tick()
	if m.State != StateAccelerate || m.Gravity {
		t.Fatalf("expected ignition at 0.3s, got state %s gravity %v", m.State, m.Gravity)
	}
	if !r.World.Live(m.Trail) {
		t.Fatalf("expected a smoke trail after ignition")
	}

	r.Tick()
	if m.State != StateHome {
		t.Fatalf("expected homing, got %s", m.State)
	}
	if speed := r.World.Transform(id).Vel.Len(); !approx(speed, MissileSpeed, 1e-6) {
		t.Fatalf("expected cruise speed, got %v", speed)
	}
}

// TestMissileIgnoresOrdinaryDamage only counts missile-defense and airboat hits.
func TestMissileIgnoresOrdinaryDamage(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateGuidedProjectile(Vec3{}, Angles{}, owner)
	r.ApplyDamage(id, DamageInfo{Amount: 50, Type: DamageBullet})
	if body := r.World.Body(id); body.Health != MissileHealth {
		t.Fatalf("expected full health, got %v", body.Health)
	}
	r.ApplyDamage(id, DamageInfo{Amount: 24, Type: DamageAirboat})
	if m := r.World.MissileData(id); m.State != StateIgnite {
		t.Fatalf("expected no auger above the threshold, got %s", m.State)
	}
}

// TestShotDownAugersThenExplodes crosses the auger threshold and checks the
// forced detonation deadline.
func TestShotDownAugersThenExplodes(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	launcher := r.CreateLauncher(owner, 3)
	id, err := r.Fire(launcher, Vec3{}, Angles{})
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}

	r.ApplyDamage(id, DamageInfo{Amount: 26, Type: DamageMissileDefense})
	m := r.World.MissileData(id)
	if m.State != StateAuger {
		t.Fatalf("expected auger at health 74, got %s", m.State)
	}
	if l := r.World.Launcher(launcher); !l.Missile.IsZero() {
		t.Fatalf("expected launcher to be freed on shoot down")
	}
	if !hasEvent(r.DrainEventsLocked(), EventEffect, "RPGShotDown") {
		t.Fatalf("expected shot down effect")
	}

	tickN(r, 30)
	body := r.World.Body(id)
	if body.Dying {
		t.Fatalf("missile should not be dying at 0.5s")
	}
	tickN(r, 30)
	if !body.Dying {
		t.Fatalf("missile should be dying after 0.75s")
	}
	tickN(r, 29)
	if !r.World.Exists(id) {
		t.Fatalf("missile exploded early")
	}
	r.Tick()
	if r.World.Exists(id) {
		t.Fatalf("expected detonation by the auger timeout")
	}
}

// TestGracePeriodBoundary restores solidity exactly when the grace ends.
func TestGracePeriodBoundary(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateGuidedProjectile(Vec3{}, Angles{}, owner)
	r.SetGracePeriod(id, 0.5)
	body := r.World.Body(id)

	tickN(r, 29)
	if body.IsSolid() {
		t.Fatalf("expected non-solid inside the grace period")
	}
	r.Tick()
	if !body.IsSolid() {
		t.Fatalf("expected solid once the grace period ends")
	}
	if r.World.MissileData(id).InGrace {
		t.Fatalf("expected grace flag cleared")
	}
}

// TestExplodeAgainstSkySkipsFireball still removes the missile.
func TestExplodeAgainstSkySkipsFireball(t *testing.T) {
	r := NewRoom("sky", DefaultGuidanceParams(), stubTracer{hit: Trace{Fraction: 0.5, HitWorld: true, Sky: true}})
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateGuidedProjectile(Vec3{}, Angles{}, owner)
	r.DrainEventsLocked()

	r.Explode(id)
	events := r.DrainEventsLocked()
	if hasEvent(events, EventExplosion, "") {
		t.Fatalf("no fireball expected against sky")
	}
	if !hasEvent(events, EventStopSound, "Missile.Ignite") {
		t.Fatalf("expected engine sound to stop")
	}
	if r.World.Live(id) {
		t.Fatalf("missile should be marked for removal")
	}
	r.Tick()
	if r.World.Exists(id) {
		t.Fatalf("missile should be gone after the tick")
	}
}

// TestExplodeDropsLaserBlastOneUnit emits the blast just below the missile.
func TestExplodeDropsLaserBlastOneUnit(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -1000}, 1)
	id := r.CreateGuidedProjectile(Vec3{Z: 100}, Angles{}, owner)
	victim := spawnActor(r, Vec3{X: 50, Z: 64}, 2)
	r.DrainEventsLocked()

	r.Explode(id)
	var blast *Event
	for _, ev := range r.DrainEventsLocked() {
		if ev.Kind == EventExplosion {
			ev := ev
			blast = &ev
		}
	}
	if blast == nil {
		t.Fatalf("expected an explosion event")
	}
	if blast.Pos.Z != 99 || blast.Magnitude != MissileDamage || blast.Radius != MissileExplosionRadius {
		t.Fatalf("unexpected blast %+v", blast)
	}
	if body := r.World.Body(victim); body.Health >= 100 {
		t.Fatalf("expected radius damage on the nearby body, health %v", body.Health)
	}
	// a second explode is a no-op
	r.Explode(id)
	if hasEvent(r.DrainEventsLocked(), EventExplosion, "") {
		t.Fatalf("missile exploded twice")
	}
}

// TestAPCUnderWaterSplashes replaces the blast with a surface effect.
func TestAPCUnderWaterSplashes(t *testing.T) {
	r := NewRoom("water", DefaultGuidanceParams(), stubTracer{water: true})
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 1500}, owner)
	r.DrainEventsLocked()

	r.Explode(id)
	events := r.DrainEventsLocked()
	if hasEvent(events, EventExplosion, "") {
		t.Fatalf("expected no blast under water")
	}
	if !hasEvent(events, EventEffect, "WaterSurfaceExplosion") {
		t.Fatalf("expected a water surface effect, got %+v", events)
	}
}

// TestFastModeGivesUpWithoutDot switches to ballistic flight at give-up speed.
func TestFastModeGivesUpWithoutDot(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 1500}, owner)
	r.IgniteDelay(id)
	r.EnableFastMode(id)

	body := r.World.Body(id)
	if body.IsSolid() {
		t.Fatalf("expected non-solid before ignition")
	}
	tickN(r, 19)
	m := r.World.MissileData(id)
	if m.State != StateBallistic {
		t.Fatalf("expected ballistic flight, got %s", m.State)
	}
	if speed := r.World.Transform(id).Vel.Len(); !approx(speed, APCGiveUpSpeed, 1e-6) {
		t.Fatalf("expected give-up speed, got %v", speed)
	}
	if !math.IsInf(m.NextThink, 1) {
		t.Fatalf("expected thinking to stop")
	}
}

// TestFastModeKeepsHomingWithDot keeps guiding while the owner paints.
func TestFastModeKeepsHomingWithDot(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	r.CreateTargetDesignator(Vec3{X: 5000}, owner, true)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 1500}, owner)
	r.IgniteDelay(id)
	r.EnableFastMode(id)

	tickN(r, 30)
	if m := r.World.MissileData(id); m.State != StateHome {
		t.Fatalf("expected homing with a lit dot, got %s", m.State)
	}
}

// TestExplodeDelayDetonatesOnTime fires after exactly the requested delay.
func TestExplodeDelayDetonatesOnTime(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{Z: 100}, owner)
	r.ExplodeDelay(id, 0.5)

	tickN(r, 29)
	if !r.World.Exists(id) {
		t.Fatalf("exploded before the delay")
	}
	r.Tick()
	if r.World.Exists(id) {
		t.Fatalf("expected detonation at 0.5s")
	}
}

// TestAugerDelayStartsAugering disables guidance and spirals after the delay.
func TestAugerDelayStartsAugering(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 1500}, owner)
	r.AugerDelay(id, 0.2)

	m := r.World.MissileData(id)
	if !m.GuidingDisabled || m.State != StateAugerDelay {
		t.Fatalf("expected auger delay with guidance off, got %+v", m)
	}
	tickN(r, 12)
	if m.State != StateAuger {
		t.Fatalf("expected auger after 0.2s, got %s", m.State)
	}
	deadline := r.Now + APCAugerMaxS
	if m.AugerUntil < r.Now+APCAugerMinS-1e-9 || m.AugerUntil > deadline+1e-9 {
		t.Fatalf("auger deadline %v outside [%v, %v]", m.AugerUntil, r.Now+APCAugerMinS, deadline)
	}
	for i := 0; i < 130 && r.World.Exists(id); i++ {
		r.Tick()
	}
	if r.World.Exists(id) {
		t.Fatalf("expected detonation within the auger window")
	}
}

// TestDumbFireStopsThinking flies on the current velocity.
func TestDumbFireStopsThinking(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 600}, owner)
	r.DumbFire(id)
	tickN(r, 30)
	tr := r.World.Transform(id)
	if tr.Vel != (Vec3{X: 600}) {
		t.Fatalf("expected unchanged velocity, got %+v", tr.Vel)
	}
	if !approx(tr.Pos.X, 300, 1e-6) {
		t.Fatalf("expected 300 units travelled, got %+v", tr.Pos)
	}
}

// TestMissileTouchFilters checks which bodies end the flight.
func TestMissileTouchFilters(t *testing.T) {
	r := newTestRoom(t)
	trigger := r.SpawnBody(BodySpec{Solid: SolidNot | SolidTrigger})
	weaponTrigger := r.SpawnBody(BodySpec{Solid: SolidNot | SolidTrigger})
	r.World.Body(weaponTrigger).Weapon = true
	volume := r.SpawnBody(BodySpec{Solid: SolidNot | SolidVolumeContents})
	wall := r.SpawnBody(BodySpec{})

	laser := &MissileComponent{Profile: LaserProfile(r.params)}
	apc := &MissileComponent{Profile: APCProfile(r.params)}

	if r.missileTouch(laser, trigger) {
		t.Errorf("laser missile should pass through an undamageable trigger")
	}
	if !r.missileTouch(laser, weaponTrigger) {
		t.Errorf("laser missile should stop on weapon-group triggers")
	}
	if !r.missileTouch(laser, wall) {
		t.Errorf("laser missile should stop on solids")
	}
	if r.missileTouch(apc, trigger) {
		t.Errorf("apc missile should ignore plain triggers")
	}
	if !r.missileTouch(apc, volume) {
		t.Errorf("apc missile should stop on volume contents")
	}
}

// TestMissileExplodesOnLevelGeometry stops at the first world hit.
func TestMissileExplodesOnLevelGeometry(t *testing.T) {
	r := NewRoom("wall", DefaultGuidanceParams(), stubTracer{hit: Trace{Fraction: 0.5, HitWorld: true}})
	owner := spawnActor(r, Vec3{X: -100}, 1)
	id := r.CreateAPCVariant(Vec3{}, Angles{}, Vec3{X: 600}, owner)
	r.DumbFire(id)
	r.Tick()
	if r.World.Exists(id) {
		t.Fatalf("expected the missile to explode on the wall")
	}
}
