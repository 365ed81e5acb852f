package game

import "math"

// GunnerBehavior fires at the nearest visible hostile and keeps the laser on
// it while the missile flies.
type GunnerBehavior struct {
	MaxRange float64
}

func NewGunnerBehavior() *GunnerBehavior {
	return &GunnerBehavior{MaxRange: LaserRange}
}

func (b *GunnerBehavior) Plan(ctx *AIContext) []AICommand {
	if ctx == nil || ctx.SelfTransform == nil || ctx.Launcher == nil {
		return nil
	}
	target := b.pickTarget(ctx)
	if target == nil {
		if ctx.Launcher.Guiding && !ctx.MissileInFlight() {
			return []AICommand{CommandStopGuiding()}
		}
		return nil
	}
	if ctx.MissileInFlight() {
		return []AICommand{CommandPaint(target.Center)}
	}
	if ctx.LauncherReady() {
		return []AICommand{CommandFire(target.Center)}
	}
	return nil
}

func (b *GunnerBehavior) pickTarget(ctx *AIContext) *AIBodyInfo {
	var best *AIBodyInfo
	bestDist := math.MaxFloat64
	for i := range ctx.Hostiles {
		h := &ctx.Hostiles[i]
		if !h.Visible || h.Distance > b.MaxRange {
			continue
		}
		if h.Distance < bestDist {
			best = h
			bestDist = h.Distance
		}
	}
	return best
}

// DodgeBehavior sidesteps when a danger sound covers the actor or a missile
// is about to pass close by, and stands still otherwise.
type DodgeBehavior struct {
	Speed       float64
	PassRadius  float64
	WarningTime float64
	dodging     bool
}

func NewDodgeBehavior() *DodgeBehavior {
	return &DodgeBehavior{Speed: AIDodgeSpeed, PassRadius: DangerTraceRadius, WarningTime: 1.0}
}

func (b *DodgeBehavior) Plan(ctx *AIContext) []AICommand {
	if ctx == nil || ctx.SelfTransform == nil {
		return nil
	}
	pos := ctx.SelfTransform.Pos

	steer := Vec3{}
	for _, d := range ctx.Dangers {
		steer = steer.Add(unitOrZero(pos.Sub(d.Pos).Flat()))
	}
	for _, threat := range ctx.Threats {
		if threat.DistanceAtClosest > b.PassRadius || threat.TimeToClosest > b.WarningTime {
			continue
		}
		// step across the missile's line rather than along it
		lateral := Vec3{X: -threat.Vel.Y, Y: threat.Vel.X}
		if lateral.Dot(pos.Sub(threat.Pos)) < 0 {
			lateral = lateral.Scale(-1)
		}
		steer = steer.Add(unitOrZero(lateral))
	}

	dir := unitOrZero(steer)
	if dir.IsZero() {
		if !b.dodging {
			return nil
		}
		b.dodging = false
		return []AICommand{CommandSetVelocity(Vec3{})}
	}
	b.dodging = true
	return []AICommand{CommandSetVelocity(dir.Scale(b.Speed))}
}
