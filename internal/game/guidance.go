package game

// BlendVelocity turns vel toward toTarget by homing while keeping its speed.
// toTarget must be a unit vector (or zero when dist is zero).
func BlendVelocity(vel, toTarget Vec3, dist, homing float64) Vec3 {
	dir, speed := vel.Normalize()
	if speed == 0 {
		// a stalled missile stays stalled; the caller detonates it
		return Vec3{}
	}
	newDir, l := toTarget.Scale(homing).Add(dir.Scale(1 - homing)).Normalize()
	if l < BlendDegenerateEps {
		// the two directions cancelled out
		if dist != 0 {
			newDir = toTarget
		} else {
			newDir = dir
		}
	}
	return newDir.Scale(speed)
}

// shootPosition is where the laser feeding dot starts.
func (r *Room) shootPosition(d *Designator) Vec3 {
	if r.World.Live(d.Owner) {
		return worldSpaceCenter(r.World, d.Owner)
	}
	return d.ChasePosition()
}

// computeAimPoint picks the point the missile steers toward this tick and
// the blend factor to use.
func (r *Room) computeAimPoint(tr *Transform, m *MissileComponent, dot *Designator) (Vec3, float64) {
	if m.GuidingDisabled {
		m.LastHomingSpeed = 0
		return tr.Pos, 0
	}
	var aim Vec3
	var homing float64
	switch m.Profile.Mode {
	case GuidanceAPC:
		aim, homing = r.apcDotPosition(tr, m, dot)
	default:
		if target := r.specificTarget(m); !target.IsZero() {
			aim, homing = BodyTarget(r.World, target, tr.Pos), r.params.HomingSpeed
		} else {
			aim, homing = r.laserDotPosition(tr.Pos, dot)
		}
	}
	m.LastHomingSpeed = homing
	return aim, homing
}

// laserDotPosition chases the dot, or a point on the beam just ahead of the
// missile while it is still short of the laser or near the spot.
func (r *Room) laserDotPosition(pos Vec3, dot *Designator) (Vec3, float64) {
	homing := r.params.HomingSpeed
	chase := dot.ChasePosition()
	if !r.designatorTarget(dot).IsZero() {
		return chase, homing
	}
	start := r.shootPosition(dot)
	laserDir, laserLen := chase.Sub(start).Normalize()
	missileLen := pos.DistTo(start)
	targetLen := pos.DistTo(chase)
	if missileLen < laserLen || targetLen <= LaserLineNear {
		return PointOnLineNearestPoint(start, chase, pos).MA(LaserLineLead, laserDir), homing
	}
	return chase, homing
}

func (r *Room) specificTarget(m *MissileComponent) EntityID {
	if m.SpecificTarget.IsZero() {
		return EntityID{}
	}
	if !r.World.Live(m.SpecificTarget) {
		m.SpecificTarget = EntityID{}
	}
	return m.SpecificTarget
}

func (r *Room) apcDotPosition(tr *Transform, m *MissileComponent, dot *Designator) (Vec3, float64) {
	pos := tr.Pos
	if m.Hint != "" && r.specificTarget(m).IsZero() {
		enemyPos := dot.ChasePosition()
		var enemyVel Vec3
		if locked := r.designatorTarget(dot); !locked.IsZero() {
			enemyPos = BodyTarget(r.World, locked, pos)
			enemyVel = SmoothedVelocity(r.World, locked, r.Now)
		}
		if found, ok := r.Hints.FindAimTarget(r.World, pos, tr.Vel, m.Hint, enemyPos, enemyVel); ok {
			m.SpecificTarget = found
		}
	}

	target := r.specificTarget(m)
	if target.IsZero() {
		target = r.designatorTarget(dot)
	}
	if target.IsZero() {
		return r.laserDotPosition(pos, dot)
	}

	if body := r.World.Body(target); body != nil && r.params.PracticeClass != "" && body.Class == r.params.PracticeClass {
		ref := r.params.HomingSpeed
		step := r.params.APCHomingAccel * Dt
		if m.LastHomingSpeed > ref {
			m.LastHomingSpeed -= step
			if m.LastHomingSpeed < ref {
				m.LastHomingSpeed = ref
			}
		} else if m.LastHomingSpeed < ref {
			m.LastHomingSpeed += step
			if m.LastHomingSpeed > ref {
				m.LastHomingSpeed = ref
			}
		}
		return worldSpaceCenter(r.World, target), m.LastHomingSpeed
	}

	laserStart := r.shootPosition(dot)
	homing := r.params.APCLaunchHoming
	targetPos := BodyTarget(r.World, target, pos)
	aim := ComputeLeadingPosition(pos, targetPos, SmoothedVelocity(r.World, target, r.Now), tr.Vel.Len())
	targetToMissile := pos.Sub(targetPos)
	targetToShooter := laserStart.Sub(targetPos)

	minDist := APCMinHomingDistance
	maxDist := APCMaxHomingDistance
	blendTime := r.Now - m.IgnitionTime
	if blendTime > APCDownwardBlendStart {
		if m.ReachedTargetTime != 0 {
			dt := Clamp(r.Now-m.ReachedTargetTime, 0, APCCorrectionTime)
			homing = SimpleSplineRemapVal(dt, 0, APCCorrectionTime, APCCorrectionHoming, r.params.APCHoming)
			minDist = SimpleSplineRemapVal(dt, 0, APCCorrectionTime, APCMinNearHomingDistance, minDist)
			maxDist = SimpleSplineRemapVal(dt, 0, APCCorrectionTime, APCMaxNearHomingDistance, maxDist)
		} else {
			minDist = APCMinNearHomingDistance
			maxDist = APCMaxNearHomingDistance
			delta := pos.Sub(aim)
			if delta.Z > APCMinHeightDifference {
				height := Clamp(delta.Z, APCMinHeightDifference, APCMaxHeightDifference)
				adjust := SimpleSplineRemapVal(height, APCMinHeightDifference, APCMaxHeightDifference, 0, 1)
				flatDir, flatDist := delta.Flat().Normalize()
				if flatDist > APCForwardOffset {
					pulled := pos.MA(-APCForwardOffset, flatDir)
					pulled.Z = aim.Z
					aim = aim.Lerp(pulled, adjust)
				}
			} else {
				m.ReachedTargetTime = r.Now
			}
		}

		if blendTime > APCFarRangeBlendTime {
			dist := Clamp(pos.DistTo(worldSpaceCenter(r.World, target)), minDist, maxDist)
			homing = SimpleSplineRemapVal(dist, maxDist, minDist, homing, APCFarRangeHoming)
		}
	}

	if targetToShooter.Dot2D(targetToMissile) < 0 || m.GuidingDisabled {
		homing = 0
	}
	return aim, homing
}

// seek is one homing step: pick the owner's nearest lit dot, check the
// detonation zones, then turn toward the aim point.
func (r *Room) seek(id EntityID, tr *Transform, m *MissileComponent) {
	owner := r.World.OwnerOf(id)
	dotID, bestDist, found := r.Designators.FindNearestActive(r.World, tr.Pos, owner)
	var dot *Designator
	if found {
		dot = r.World.Designator(dotID)
		if r.params.DotDangerSounds && bestDist <= tr.Vel.Len()*DangerLeadFactor && r.Visible(tr.Pos, dot.Pos, id) {
			r.insertDanger(dot.Pos, MissileExplosionRadius, DangerDuration, dotID)
		}
	}

	if r.params.UseCustomDetonators {
		if _, hit := r.Zones.ScanAndCheck(r.World, tr.Pos); hit {
			r.Explode(id)
			return
		}
	}

	m.NextThink = r.Now
	if dot == nil {
		return
	}

	aim, homing := r.computeAimPoint(tr, m, dot)
	toTarget, dist := aim.Sub(tr.Pos).Normalize()
	if locked := r.designatorTarget(dot); !locked.IsZero() && dist <= TightTurnRadius && r.params.TightTurnClass != "" {
		if body := r.World.Body(locked); body != nil && body.Class == r.params.TightTurnClass {
			homing *= TightTurnScale
		}
	}

	newVel := BlendVelocity(tr.Vel, toTarget, dist, homing)
	if newVel.IsZero() {
		r.Explode(id)
		return
	}
	tr.Angles = AnglesFromVector(newVel)
	tr.Vel = newVel

	if m.Profile.DangerSounds {
		end := r.TraceLine(tr.Pos, tr.Pos.Add(tr.Vel.Scale(DangerTraceFactor)), id).EndPos
		r.insertDanger(end, DangerTraceRadius, DangerDuration, id)
	}
}
