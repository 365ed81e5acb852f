package game

import "math"

// GuidanceParams holds the room-wide tuning for missiles and launchers.
type GuidanceParams struct {
	UseCustomDetonators bool    // scan detonation zones while homing
	DotDangerSounds     bool    // warn AI near the laser spot on final approach
	MissileSpeed        float64 // cruise speed after acceleration
	LaunchSpeed         float64 // forward speed out of the tube
	LaunchLift          float64 // upward kick out of the tube
	IgniteDelay         float64 // seconds of unpowered flight
	AccelerateDelay     float64 // seconds between accelerate and homing
	HomingSpeed         float64 // laser blend factor (0..1)
	AugerMargin         float64 // health lost before the missile augers
	AugerTimeout        float64 // auger seconds before forced detonation
	AugerDyingDelay     float64 // auger seconds before the missile is marked dying
	Damage              float64
	ExplosionRadius     float64
	APCLaunchHoming     float64
	APCHoming           float64
	APCHomingAccel      float64 // practice-target blend ramp per second
	APCDamage           float64
	APCExplosionRadius  float64
	GiveUpSpeed         float64 // fast-mode speed once no dot is lit
	Gravity             float64
	ReloadSeconds       float64
	PracticeClass       string // class ramped toward HomingSpeed instead of led
	TightTurnClass      string // class that tightens the turn at close range
}

// DefaultGuidanceParams returns the stock weapon tuning.
func DefaultGuidanceParams() GuidanceParams {
	return GuidanceParams{
		UseCustomDetonators: true,
		DotDangerSounds:     true,
		MissileSpeed:        MissileSpeed,
		LaunchSpeed:         MissileLaunchSpeed,
		LaunchLift:          MissileLaunchLift,
		IgniteDelay:         MissileIgniteDelay,
		AccelerateDelay:     MissileAccelerateDelay,
		HomingSpeed:         HomingSpeed,
		AugerMargin:         MissileAugerMargin,
		AugerTimeout:        AugerTimeout,
		AugerDyingDelay:     AugerDyingDelay,
		Damage:              MissileDamage,
		ExplosionRadius:     MissileExplosionRadius,
		APCLaunchHoming:     APCLaunchHoming,
		APCHoming:           APCHoming,
		APCHomingAccel:      APCHomingAccel,
		APCDamage:           APCDamage,
		APCExplosionRadius:  APCExplosionRadius,
		GiveUpSpeed:         APCGiveUpSpeed,
		Gravity:             MissileGravity,
		ReloadSeconds:       LauncherReloadSeconds,
		PracticeClass:       ClassBullseye,
		TightTurnClass:      ClassStrider,
	}
}

// SanitizeGuidanceParams replaces unusable values with defaults and clamps
// blend factors to [0,1].
func SanitizeGuidanceParams(p GuidanceParams) GuidanceParams {
	d := DefaultGuidanceParams()
	positive := func(v, def float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return def
		}
		return v
	}
	nonNegative := func(v, def float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return def
		}
		return v
	}
	blend := func(v, def float64) float64 {
		if math.IsNaN(v) {
			return def
		}
		return Clamp(v, 0, 1)
	}

	p.MissileSpeed = positive(p.MissileSpeed, d.MissileSpeed)
	p.LaunchSpeed = nonNegative(p.LaunchSpeed, d.LaunchSpeed)
	p.LaunchLift = nonNegative(p.LaunchLift, d.LaunchLift)
	p.IgniteDelay = nonNegative(p.IgniteDelay, d.IgniteDelay)
	p.AccelerateDelay = nonNegative(p.AccelerateDelay, d.AccelerateDelay)
	p.HomingSpeed = blend(p.HomingSpeed, d.HomingSpeed)
	p.AugerMargin = nonNegative(p.AugerMargin, d.AugerMargin)
	p.AugerTimeout = positive(p.AugerTimeout, d.AugerTimeout)
	p.AugerDyingDelay = nonNegative(p.AugerDyingDelay, d.AugerDyingDelay)
	if p.AugerDyingDelay > p.AugerTimeout {
		p.AugerDyingDelay = p.AugerTimeout
	}
	p.Damage = nonNegative(p.Damage, d.Damage)
	p.ExplosionRadius = positive(p.ExplosionRadius, d.ExplosionRadius)
	p.APCLaunchHoming = blend(p.APCLaunchHoming, d.APCLaunchHoming)
	p.APCHoming = blend(p.APCHoming, d.APCHoming)
	p.APCHomingAccel = nonNegative(p.APCHomingAccel, d.APCHomingAccel)
	p.APCDamage = nonNegative(p.APCDamage, d.APCDamage)
	p.APCExplosionRadius = positive(p.APCExplosionRadius, d.APCExplosionRadius)
	p.GiveUpSpeed = positive(p.GiveUpSpeed, d.GiveUpSpeed)
	p.Gravity = nonNegative(p.Gravity, d.Gravity)
	p.ReloadSeconds = nonNegative(p.ReloadSeconds, d.ReloadSeconds)
	return p
}

type GuidanceMode uint8

const (
	GuidanceLaser GuidanceMode = iota
	GuidanceAPC
)

func (m GuidanceMode) String() string {
	switch m {
	case GuidanceAPC:
		return "apc"
	default:
		return "laser"
	}
}

// GuidanceProfile selects how a single missile picks its aim point and how
// it blows up.
type GuidanceProfile struct {
	Mode         GuidanceMode
	Damage       float64
	Radius       float64
	GiveUpSpeed  float64 // >0 enables fast mode
	DangerSounds bool    // insert a danger sound ahead of the missile each seek
	WaterEffect  bool    // detonate as a surface splash when under water
}

func LaserProfile(p GuidanceParams) GuidanceProfile {
	return GuidanceProfile{
		Mode:   GuidanceLaser,
		Damage: p.Damage,
		Radius: p.ExplosionRadius,
	}
}

func APCProfile(p GuidanceParams) GuidanceProfile {
	return GuidanceProfile{
		Mode:         GuidanceAPC,
		Damage:       p.APCDamage,
		Radius:       p.APCExplosionRadius,
		DangerSounds: true,
		WaterEffect:  true,
	}
}
