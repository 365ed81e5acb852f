package game

import "testing"

// apcScenario puts a shooter at the origin, a locked target and an APC
// missile in the room. The clock is left at zero.
func apcScenario(t *testing.T, class string, targetPos, targetVel, missilePos, missileVel Vec3) (*Room, EntityID, *Transform, *MissileComponent, *Designator) {
	t.Helper()
	r := newTestRoom(t)
	owner := spawnActor(r, Vec3{}, 1)
	target := r.SpawnBody(BodySpec{Class: class, Pos: targetPos, Vel: targetVel, Health: 100, TakeDamage: TakeDamageYes, Team: 2})
	dotID := r.CreateTargetDesignator(targetPos, owner, true)
	r.SetDesignatorTarget(dotID, target)
	id := r.CreateAPCVariant(missilePos, AnglesFromVector(missileVel), missileVel, owner)
	return r, target, r.World.Transform(id), r.World.MissileData(id), r.World.Designator(dotID)
}

// TestAPCGuidanceBranches checks the aim point and blend factor of each
// APC steering phase.
func TestAPCGuidanceBranches(t *testing.T) {
	params := DefaultGuidanceParams()
	target := Vec3{X: 3000, Z: 36}
	cases := []struct {
		name       string
		targetVel  Vec3
		missilePos Vec3
		now        float64
		ignition   float64
		reached    float64
		wantAim    Vec3
		wantHoming float64
		wantReach  float64
	}{
		{
			name:       "launch leads a moving target",
			targetVel:  Vec3{Y: 500},
			missilePos: Vec3{X: 1000, Z: 36},
			wantAim:    ComputeLeadingPosition(Vec3{X: 1000, Z: 36}, target, Vec3{Y: 500}, 1000),
			wantHoming: params.APCLaunchHoming,
		},
		{
			name:       "missile past the target stops homing",
			missilePos: Vec3{X: 4000, Z: 36},
			wantAim:    target,
			wantHoming: 0,
		},
		{
			name:       "high missile is pulled back toward the shooter",
			missilePos: Vec3{X: 500, Z: 436},
			ignition:   -0.3,
			wantAim:    Vec3{X: 2750, Z: 36},
			wantHoming: params.APCLaunchHoming,
		},
		{
			name:       "low missile marks the target reached",
			missilePos: Vec3{X: 500, Z: 36},
			now:        0.5,
			ignition:   0.2,
			wantAim:    target,
			wantHoming: params.APCLaunchHoming,
			wantReach:  0.5,
		},
		{
			name:       "correction window eases toward cruise homing",
			missilePos: Vec3{X: 500, Z: 36},
			now:        1.0,
			ignition:   0.7,
			reached:    0.9,
			wantAim:    target,
			wantHoming: (APCCorrectionHoming + params.APCHoming) / 2,
			wantReach:  0.9,
		},
		{
			name:       "after the correction window cruise homing applies",
			missilePos: Vec3{X: 500, Z: 36},
			now:        1.0,
			ignition:   0.7,
			reached:    0.5,
			wantAim:    target,
			wantHoming: params.APCHoming,
			wantReach:  0.5,
		},
		{
			name:       "far range keeps cruise homing",
			missilePos: Vec3{X: 500, Z: 36},
			now:        1.0,
			ignition:   0,
			reached:    0.2,
			wantAim:    target,
			wantHoming: params.APCHoming,
			wantReach:  0.2,
		},
		{
			name:       "close range decays to the far-range floor",
			missilePos: Vec3{X: 2000, Z: 36},
			now:        1.0,
			ignition:   0,
			reached:    0.2,
			wantAim:    target,
			wantHoming: APCFarRangeHoming,
			wantReach:  0.2,
		},
	}
	for _, tc := range cases {
		r, _, tr, m, dot := apcScenario(t, "npc_test", target, tc.targetVel, tc.missilePos, Vec3{X: 1000})
		r.Now = tc.now
		m.IgnitionTime = tc.ignition
		m.ReachedTargetTime = tc.reached
		aim, homing := r.apcDotPosition(tr, m, dot)
		if !approxVec(aim, tc.wantAim, 1e-6) {
			t.Errorf("%s: expected aim %+v, got %+v", tc.name, tc.wantAim, aim)
		}
		if !approx(homing, tc.wantHoming, 1e-9) {
			t.Errorf("%s: expected homing %v, got %v", tc.name, tc.wantHoming, homing)
		}
		if !approx(m.ReachedTargetTime, tc.wantReach, 1e-9) {
			t.Errorf("%s: expected reached time %v, got %v", tc.name, tc.wantReach, m.ReachedTargetTime)
		}
	}
}

// TestAPCLeadAimsAhead leads sideways motion.
func TestAPCLeadAimsAhead(t *testing.T) {
	r, _, tr, m, dot := apcScenario(t, "npc_test", Vec3{X: 3000, Z: 36}, Vec3{Y: 500}, Vec3{X: 1000, Z: 36}, Vec3{X: 1000})
	aim, _ := r.apcDotPosition(tr, m, dot)
	if aim.Y <= 0 {
		t.Fatalf("expected the aim point ahead of the target, got %+v", aim)
	}
}

// TestPracticeTargetRampsHoming walks the blend toward the base homing speed.
func TestPracticeTargetRampsHoming(t *testing.T) {
	params := DefaultGuidanceParams()
	step := params.APCHomingAccel * Dt
	cases := []struct {
		start, want float64
	}{
		{params.APCHoming, params.APCHoming + step},
		{0.2, 0.2 - step},
		{params.HomingSpeed - step/2, params.HomingSpeed},
		{params.HomingSpeed + step/2, params.HomingSpeed},
	}
	for _, tc := range cases {
		targetPos := Vec3{X: 3000, Z: 36}
		r, _, tr, m, dot := apcScenario(t, params.PracticeClass, targetPos, Vec3{}, Vec3{X: 500, Z: 36}, Vec3{X: 1000})
		m.LastHomingSpeed = tc.start
		aim, homing := r.apcDotPosition(tr, m, dot)
		if !approx(homing, tc.want, 1e-12) || !approx(m.LastHomingSpeed, tc.want, 1e-12) {
			t.Errorf("from %v: expected homing %v, got %v", tc.start, tc.want, homing)
		}
		if aim != targetPos {
			t.Errorf("expected the practice target center, got %+v", aim)
		}
	}
}

// TestHintResultSticks keeps the hint target once found.
func TestHintResultSticks(t *testing.T) {
	r, enemy, tr, m, dot := apcScenario(t, "npc_test", Vec3{X: 1000, Z: 36}, Vec3{X: 300}, Vec3{Z: 36}, Vec3{X: 1000})
	bridge := r.SpawnBody(BodySpec{Name: "bridge", Pos: Vec3{X: 2000, Z: 36}, Solid: SolidNot})
	r.CreateAimHint("pass", "bridge", AxisAlignedOBB(Vec3{X: 2000, Z: 36}, Vec3{-500, -100, -100}, Vec3{500, 100, 100}))
	m.Hint = "pass"

	aim, homing := r.apcDotPosition(tr, m, dot)
	if m.SpecificTarget != bridge {
		t.Fatalf("expected the hint target %v, got %v", bridge, m.SpecificTarget)
	}
	if !approxVec(aim, Vec3{X: 2000, Z: 36}, 1e-9) || !approx(homing, DefaultGuidanceParams().APCLaunchHoming, 1e-12) {
		t.Fatalf("expected to aim at the bridge, got %+v (homing %v)", aim, homing)
	}

	r.World.Transform(enemy).Pos = Vec3{X: 1000, Y: 5000, Z: 36}
	r.apcDotPosition(tr, m, dot)
	if m.SpecificTarget != bridge {
		t.Fatalf("expected the hint target to stick, got %v", m.SpecificTarget)
	}
}

// TestSpecificTargetOverridesDot aims at the chosen entity rather than the
// painted one, for both missile kinds.
func TestSpecificTargetOverridesDot(t *testing.T) {
	r, _, tr, m, dot := apcScenario(t, "npc_test", Vec3{X: 3000, Z: 36}, Vec3{}, Vec3{X: 500, Z: 36}, Vec3{X: 1000})
	other := r.SpawnBody(BodySpec{Name: "other", Pos: Vec3{X: 2500, Y: 400, Z: 36}})
	m.SpecificTarget = other
	aim, _ := r.apcDotPosition(tr, m, dot)
	if !approxVec(aim, Vec3{X: 2500, Y: 400, Z: 36}, 1e-9) {
		t.Fatalf("expected the APC missile to aim at the specific target, got %+v", aim)
	}

	laser := r.CreateGuidedProjectile(Vec3{X: 500, Z: 36}, Angles{}, dot.Owner)
	r.AimAtSpecificTarget(laser, other)
	laserAim, homing := r.computeAimPoint(r.World.Transform(laser), r.World.MissileData(laser), dot)
	if laserAim != (Vec3{X: 2500, Y: 400, Z: 36}) || homing != r.params.HomingSpeed {
		t.Fatalf("expected the laser missile to aim at the specific target, got %+v (homing %v)", laserAim, homing)
	}

	r.RemoveEntity(other)
	laserAim, _ = r.computeAimPoint(r.World.Transform(laser), r.World.MissileData(laser), dot)
	if laserAim != dot.ChasePosition() {
		t.Fatalf("expected a dead specific target to fall back to the dot, got %+v", laserAim)
	}
}

// TestTightTurnNearStrider sharpens the turn onto a close strider-class target.
func TestTightTurnNearStrider(t *testing.T) {
	for _, class := range []string{ClassStrider, "npc_test"} {
		r := newTestRoom(t)
		owner := spawnActor(r, Vec3{X: -500}, 1)
		targetPos := Vec3{X: 200, Y: 100, Z: 36}
		target := r.SpawnBody(BodySpec{Class: class, Pos: targetPos, Health: 100, TakeDamage: TakeDamageYes})
		dot := r.CreateTargetDesignator(targetPos, owner, true)
		r.SetDesignatorTarget(dot, target)
		id := r.CreateGuidedProjectile(Vec3{Z: 36}, Angles{}, owner)
		tr := r.World.Transform(id)
		tr.Vel = Vec3{X: MissileSpeed}

		toTarget, dist := targetPos.Sub(tr.Pos).Normalize()
		homing := r.params.HomingSpeed
		if class == ClassStrider {
			homing *= TightTurnScale
		}
		want := BlendVelocity(Vec3{X: MissileSpeed}, toTarget, dist, homing)

		r.seek(id, tr, r.World.MissileData(id))
		if !approxVec(tr.Vel, want, 1e-9) {
			t.Errorf("%s: expected velocity %+v, got %+v", class, want, tr.Vel)
		}
	}
}

// TestDisableGuidingTwiceMatchesOnce keeps homing at zero on every tick.
func TestDisableGuidingTwiceMatchesOnce(t *testing.T) {
	run := func(calls int) Vec3 {
		r := newTestRoom(t)
		owner := spawnActor(r, Vec3{X: -100}, 1)
		r.CreateTargetDesignator(Vec3{Y: 1000}, owner, true)
		id := r.CreateGuidedProjectile(Vec3{}, Angles{}, owner)
		for i := 0; i < calls; i++ {
			r.DisableGuiding(id)
		}
		for i := 0; i < 40; i++ {
			r.Tick()
			m := r.World.MissileData(id)
			if !m.GuidingDisabled {
				t.Fatalf("expected guiding to stay disabled on tick %d", i)
			}
		}
		if m := r.World.MissileData(id); m.State != StateHome || m.LastHomingSpeed != 0 {
			t.Fatalf("expected homing state with zero blend, got %v at %v", m.State, m.LastHomingSpeed)
		}
		return r.World.Transform(id).Vel
	}
	if once, twice := run(1), run(2); once != twice {
		t.Fatalf("expected the same flight, got %+v and %+v", once, twice)
	}
}

// TestBlendVelocityStalled returns zero velocity for a stopped missile.
func TestBlendVelocityStalled(t *testing.T) {
	if got := BlendVelocity(Vec3{}, Vec3{X: 1}, 100, 0.5); !got.IsZero() {
		t.Fatalf("expected zero velocity, got %+v", got)
	}
}
