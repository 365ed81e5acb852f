package game

type AICommand interface {
	apply(r *Room, a *AIAgent)
}

type aiCommandPaint struct {
	target Vec3
}

func (c aiCommandPaint) apply(r *Room, a *AIAgent) {
	if a.Launcher.IsZero() {
		return
	}
	r.PaintTarget(a.Launcher, worldSpaceCenter(r.World, a.Actor), c.target)
}

type aiCommandFire struct {
	target Vec3
}

func (c aiCommandFire) apply(r *Room, a *AIAgent) {
	if a.Launcher.IsZero() {
		return
	}
	muzzle := worldSpaceCenter(r.World, a.Actor)
	if _, err := r.Fire(a.Launcher, muzzle, AimAngles(muzzle, c.target)); err == nil {
		r.PaintTarget(a.Launcher, muzzle, c.target)
	}
}

type aiCommandStopGuiding struct{}

func (aiCommandStopGuiding) apply(r *Room, a *AIAgent) {
	if l := r.launcher(a.Launcher); l != nil && l.Guiding {
		r.StopGuiding(a.Launcher)
	}
}

type aiCommandSetVelocity struct {
	vel Vec3
}

func (c aiCommandSetVelocity) apply(r *Room, a *AIAgent) {
	if tr := r.World.Transform(a.Actor); tr != nil {
		tr.Vel = c.vel
	}
}

func CommandPaint(target Vec3) AICommand { return aiCommandPaint{target: target} }

func CommandFire(target Vec3) AICommand { return aiCommandFire{target: target} }

func CommandStopGuiding() AICommand { return aiCommandStopGuiding{} }

func CommandSetVelocity(vel Vec3) AICommand { return aiCommandSetVelocity{vel: vel} }

type AIBehavior interface {
	Plan(ctx *AIContext) []AICommand
}

// AIAgent drives one actor. Launcher may be zero for bots that only dodge.
type AIAgent struct {
	Actor        EntityID
	Launcher     EntityID
	Behavior     AIBehavior
	PlanInterval float64
	nextPlanAt   float64
}

func NewAIAgent(actor, launcher EntityID, behavior AIBehavior) *AIAgent {
	interval := AIPlanInterval
	if interval < Dt {
		interval = Dt
	}
	return &AIAgent{Actor: actor, Launcher: launcher, Behavior: behavior, PlanInterval: interval}
}

func (a *AIAgent) ready(now float64) bool {
	return now+TimeEpsilon >= a.nextPlanAt
}

func (a *AIAgent) planned(now float64) {
	a.nextPlanAt = now + a.PlanInterval
}

// AddBot attaches a behavior to actor, replacing any earlier one.
func (r *Room) AddBot(actor, launcher EntityID, behavior AIBehavior) *AIAgent {
	agent := NewAIAgent(actor, launcher, behavior)
	r.Bots[actor] = agent
	return agent
}

type AIBodyInfo struct {
	Entity    EntityID
	Body      *Body
	Transform *Transform
	Center    Vec3
	Distance  float64
	Visible   bool
}

type AIMissileThreat struct {
	Entity            EntityID
	Pos               Vec3
	Vel               Vec3
	Distance          float64
	TimeToClosest     float64
	DistanceAtClosest float64
}

type AIContext struct {
	Room          *Room
	Now           float64
	Self          EntityID
	SelfTransform *Transform
	SelfBody      *Body
	LauncherID    EntityID
	Launcher      *Launcher
	Hostiles      []AIBodyInfo
	Threats       []AIMissileThreat
	Dangers       []DangerSound
}

// LauncherReady reports whether a Fire issued now would succeed.
func (ctx *AIContext) LauncherReady() bool {
	if ctx == nil || ctx.Launcher == nil {
		return false
	}
	return ctx.Launcher.Ready(ctx.Room.World, ctx.Now) == nil
}

// MissileInFlight reports whether the bot's own missile is still flying.
func (ctx *AIContext) MissileInFlight() bool {
	return ctx != nil && ctx.Launcher != nil && ctx.Room.World.Live(ctx.Launcher.Missile)
}

func buildAIContext(r *Room, agent *AIAgent) *AIContext {
	ctx := &AIContext{
		Room:          r,
		Now:           r.Now,
		Self:          agent.Actor,
		SelfTransform: r.World.Transform(agent.Actor),
		SelfBody:      r.World.Body(agent.Actor),
		LauncherID:    agent.Launcher,
		Launcher:      r.launcher(agent.Launcher),
	}
	if ctx.SelfTransform == nil || ctx.SelfBody == nil {
		return ctx
	}
	eye := worldSpaceCenter(r.World, agent.Actor)

	r.World.ForEach([]ComponentKey{CompBody, CompTransform}, func(e EntityID) {
		if e == agent.Actor || r.World.DestroyedData(e) != nil {
			return
		}
		if r.World.HasComponent(e, CompMissile) {
			return
		}
		body := r.World.Body(e)
		if body.TakeDamage != TakeDamageYes || body.Team == ctx.SelfBody.Team {
			return
		}
		center := worldSpaceCenter(r.World, e)
		sight := r.TraceLine(eye, center, agent.Actor)
		ctx.Hostiles = append(ctx.Hostiles, AIBodyInfo{
			Entity:    e,
			Body:      body,
			Transform: r.World.Transform(e),
			Center:    center,
			Distance:  eye.DistTo(center),
			Visible:   !sight.Hit() || sight.Entity == e,
		})
	})

	r.World.ForEach([]ComponentKey{CompMissile, CompTransform}, func(e EntityID) {
		if r.World.DestroyedData(e) != nil || r.World.OwnerOf(e) == agent.Actor {
			return
		}
		tr := r.World.Transform(e)
		rel := tr.Pos.Sub(eye)
		relVel := tr.Vel.Sub(ctx.SelfTransform.Vel)
		tClosest, dClosest := closestApproach(rel, relVel)
		ctx.Threats = append(ctx.Threats, AIMissileThreat{
			Entity:            e,
			Pos:               tr.Pos,
			Vel:               tr.Vel,
			Distance:          rel.Len(),
			TimeToClosest:     tClosest,
			DistanceAtClosest: dClosest,
		})
	})

	ctx.Dangers = r.Danger.Near(ctx.SelfTransform.Pos, r.Now)
	return ctx
}

func closestApproach(relativePos Vec3, relativeVel Vec3) (float64, float64) {
	speedSq := relativeVel.LenSqr()
	if speedSq <= 1e-6 {
		return 0, relativePos.Len()
	}
	t := -relativePos.Dot(relativeVel) / speedSq
	if t < 0 {
		t = 0
	}
	dist := relativePos.Add(relativeVel.Scale(t)).Len()
	return t, dist
}

func unitOrZero(v Vec3) Vec3 {
	dir, l := v.Normalize()
	if l <= 1e-6 {
		return Vec3{}
	}
	return dir
}
