package game

import (
	"errors"
	"testing"
)

// TestFireRequiresLiveOwner refuses to launch for a dead shooter.
func TestFireRequiresLiveOwner(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 3)
	r.RemoveEntity(owner)
	if _, err := r.Fire(launcher, Vec3{}, Angles{}); !errors.Is(err, ErrNoOwner) {
		t.Fatalf("expected ErrNoOwner, got %v", err)
	}
	if _, err := r.Fire(EntityID{Index: 999, Gen: 1}, Vec3{}, Angles{}); !errors.Is(err, ErrNoLauncher) {
		t.Fatalf("expected ErrNoLauncher, got %v", err)
	}
}

// detonateAway explodes a missile out of blast range of its shooter.
func detonateAway(r *Room, id EntityID) {
	r.World.Transform(id).Pos = Vec3{X: 5000, Z: 36}
	r.Explode(id)
}

// TestFireReloadAndAmmoSequence walks a launcher through its reload cycle.
func TestFireReloadAndAmmoSequence(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 2)
	muzzle := Vec3{X: 20, Z: 36}

	first, err := r.Fire(launcher, muzzle, Angles{})
	if err != nil {
		t.Fatalf("first shot failed: %v", err)
	}
	l := r.World.Launcher(launcher)
	if l.Ammo != 1 || l.Missile != first {
		t.Fatalf("expected one round left and the missile tracked, got %+v", l)
	}
	if m := r.World.MissileData(first); m.Launcher != launcher || !m.InGrace {
		t.Fatalf("expected missile linked to launcher with grace, got %+v", m)
	}
	if _, err := r.Fire(launcher, muzzle, Angles{}); !errors.Is(err, ErrMissileInFlight) {
		t.Fatalf("expected ErrMissileInFlight, got %v", err)
	}

	detonateAway(r, first)
	if _, err := r.Fire(launcher, muzzle, Angles{}); !errors.Is(err, ErrReloading) {
		t.Fatalf("expected ErrReloading, got %v", err)
	}

	tickN(r, 120)
	second, err := r.Fire(launcher, muzzle, Angles{})
	if err != nil {
		t.Fatalf("shot after reload failed: %v", err)
	}
	detonateAway(r, second)
	if l.ReloadUntil > r.Now {
		t.Fatalf("no reload expected with an empty launcher")
	}

	tickN(r, 30)
	if _, err := r.Fire(launcher, muzzle, Angles{}); !errors.Is(err, ErrNoAmmo) {
		t.Fatalf("expected ErrNoAmmo, got %v", err)
	}
}

// TestFireRateLimit applies the refire interval when reloads are instant.
func TestFireRateLimit(t *testing.T) {
	params := DefaultGuidanceParams()
	params.ReloadSeconds = 0
	r := NewRoom("rate", params, nil)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 5)

	id, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{})
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	detonateAway(r, id)
	if _, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{}); !errors.Is(err, ErrFireRate) {
		t.Fatalf("expected ErrFireRate, got %v", err)
	}
	tickN(r, 30)
	if _, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{}); err != nil {
		t.Fatalf("expected refire after the interval, got %v", err)
	}
}

// TestPointBlankExplosionKillsShooter applies blast damage to the owner too.
func TestPointBlankExplosionKillsShooter(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 3)
	id, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{})
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	r.Explode(id)
	if _, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{}); !errors.Is(err, ErrNoOwner) {
		t.Fatalf("expected the shooter to die in its own blast, got %v", err)
	}
}

// TestBlockedShotGetsNoGrace keeps the missile solid when fired into a wall.
func TestBlockedShotGetsNoGrace(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	r.SpawnBody(BodySpec{Pos: Vec3{X: 64}, Mins: Vec3{-8, -64, 0}, Maxs: Vec3{8, 64, 128}})
	launcher := r.CreateLauncher(owner, 3)

	id, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{})
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	if m := r.World.MissileData(id); m.InGrace || !r.World.Body(id).IsSolid() {
		t.Fatalf("expected a solid missile without grace")
	}
}

// TestNPCLauncherGrace always grants the longer grace period.
func TestNPCLauncherGrace(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 3)
	r.World.Launcher(launcher).NPC = true
	id, _ := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{})
	if m := r.World.MissileData(id); !m.InGrace || !approx(m.GraceEndsAt, 0.5, 1e-12) {
		t.Fatalf("expected 0.5s grace, got %+v", m)
	}
}

// TestAPCLauncherFiresDelayedVariant launches the APC missile in ignite delay.
func TestAPCLauncherFiresDelayedVariant(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 3)
	r.World.Launcher(launcher).APC = true
	id, err := r.Fire(launcher, Vec3{X: 20, Z: 36}, Angles{})
	if err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	if body := r.World.Body(id); body.Class != ClassAPCMissile {
		t.Fatalf("expected %s, got %s", ClassAPCMissile, body.Class)
	}
	if m := r.World.MissileData(id); m.State != StateIgniteDelay || m.Profile.Mode != GuidanceAPC {
		t.Fatalf("expected APC ignite delay, got %+v", m)
	}
}

// TestGuidingToggleManagesDesignator creates and removes the spot.
func TestGuidingToggleManagesDesignator(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	launcher := r.CreateLauncher(owner, 3)
	l := r.World.Launcher(launcher)

	r.StartGuiding(launcher)
	if !l.Guiding || r.Designators.Len() != 1 || !r.World.Designator(l.Designator).On {
		t.Fatalf("expected one lit designator")
	}
	r.ToggleGuiding(launcher)
	if l.Guiding || r.Designators.Len() != 0 {
		t.Fatalf("expected guiding off and no designators, got %d", r.Designators.Len())
	}

	r.SuppressGuiding(launcher, true)
	r.StartGuiding(launcher)
	if l.Guiding || r.World.Designator(l.Designator).On {
		t.Fatalf("suppressed launcher must not light the spot")
	}
	r.SuppressGuiding(launcher, false)
	if !r.World.Designator(l.Designator).On {
		t.Fatalf("expected the spot back on")
	}
}

// TestPaintTargetLocksDamageableBody aims the spot and locks on.
func TestPaintTargetLocksDamageableBody(t *testing.T) {
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	target := spawnActor(r, Vec3{X: 500}, 2)
	launcher := r.CreateLauncher(owner, 3)
	muzzle := Vec3{Z: 36}

	r.PaintTarget(launcher, muzzle, worldSpaceCenter(r.World, target))
	d := r.World.Designator(r.World.Launcher(launcher).Designator)
	if d == nil || d.Target != target {
		t.Fatalf("expected lock on %v, got %+v", target, d)
	}
	if !approx(d.Pos.X, 484, 1e-6) {
		t.Fatalf("expected spot on the near face, got %+v", d.Pos)
	}

	r.PaintTarget(launcher, muzzle, Vec3{Y: 500, Z: 36})
	if !d.Target.IsZero() {
		t.Fatalf("expected lock cleared when painting empty space")
	}
}
