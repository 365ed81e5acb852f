package game

const (
	SimHz          = 60.0 // server tick rate
	Dt             = 1.0 / SimHz
	HistoryKeepS   = 2.0  // seconds of motion history per body
	SmoothWindowS  = 0.1  // window for smoothed velocity queries
	UpdateRateHz   = 15.0 // per-client WS state pushes
	TimeEpsilon    = 1e-9
	MaxTraceLength = 56756.0

	// Missile flight.
	MissileSpeed           = 1500.0
	MissileLaunchSpeed     = 300.0
	MissileLaunchLift      = 128.0
	MissileIgniteDelay     = 0.3
	MissileAccelerateDelay = 0.1
	MissileHealth          = 100.0
	MissileDamage          = 200.0
	MissileExplosionRadius = 200.0
	MissileGravity         = 600.0
	MissileAugerMargin     = 25.0
	MissileSkyProbe        = 16.0
	MissileTrailFadeS      = 0.1
	DesignatorBackoff      = 10.0

	// Auger wobble.
	AugerInterval   = 0.05
	AugerSpeed      = 1000.0
	AugerDyingDelay = 0.75
	AugerTimeout    = 1.5
	AugerYawJitter  = 20.0
	AugerPitchMin   = -1.0
	AugerPitchMax   = 8.0

	// Laser guidance.
	HomingSpeed        = 0.125
	LaserLineNear      = 512.0
	LaserLineLead      = 256.0
	TightTurnRadius    = 240.0
	TightTurnScale     = 1.75
	DangerLeadFactor   = 2.5
	DangerDuration     = 0.2
	DangerTraceFactor  = 0.5
	DangerTraceRadius  = 100.0
	BlendDegenerateEps = 1e-3

	// APC guidance.
	APCMaxHomingDistance     = 2250.0
	APCMinHomingDistance     = 1250.0
	APCMaxNearHomingDistance = 1750.0
	APCMinNearHomingDistance = 1000.0
	APCDownwardBlendStart    = 0.2
	APCMinHeightDifference   = 250.0
	APCMaxHeightDifference   = 550.0
	APCCorrectionTime        = 0.2
	APCCorrectionHoming      = 0.2
	APCLaunchHoming          = 0.1
	APCHoming                = 0.025
	APCHomingAccel           = 0.01
	APCForwardOffset         = 2000.0
	APCFarRangeBlendTime     = 0.6
	APCFarRangeHoming        = 0.01
	APCDamage                = 15.0
	APCExplosionRadius       = 100.0
	APCGiveUpSpeed           = 800.0
	APCAugerMinS             = 1.0
	APCAugerMaxS             = 2.0
	WaterExplosionMagnitude  = 128.0

	// Aim hints.
	HintCosThreshold = 0.866
	HintHorizon      = 3.0

	// Launcher.
	LauncherFireInterval  = 0.5
	LauncherGracePeriod   = 0.3
	LauncherClearTrace    = 128.0
	LauncherReloadSeconds = 2.0
	LauncherDefaultAmmo   = 3
	LaserRange            = 8192.0

	// Bots.
	AIPlanInterval = 0.2
	AIDodgeSpeed   = 320.0
)

const (
	ClassMissile    = "rpg_missile"
	ClassAPCMissile = "apc_missile"
	ClassDesignator = "env_laserdot"
	ClassAimHint    = "info_apc_missile_hint"
	ClassLauncher   = "weapon_rpg"
	ClassTrail      = "env_rockettrail"
	ClassBullseye   = "npc_bullseye"
	ClassStrider    = "npc_strider"
)
