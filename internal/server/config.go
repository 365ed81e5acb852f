package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"LaserRocket/internal/collide"
	. "LaserRocket/internal/game"
)

type guidanceConfig struct {
	UseCustomDetonators *bool    `json:"useCustomDetonators"`
	DotDangerSounds     *bool    `json:"dotDangerSounds"`
	MissileSpeed        *float64 `json:"missileSpeed"`
	LaunchSpeed         *float64 `json:"launchSpeed"`
	LaunchLift          *float64 `json:"launchLift"`
	IgniteDelay         *float64 `json:"igniteDelay"`
	AccelerateDelay     *float64 `json:"accelerateDelay"`
	HomingSpeed         *float64 `json:"homingSpeed"`
	AugerMargin         *float64 `json:"augerMargin"`
	AugerTimeout        *float64 `json:"augerTimeout"`
	AugerDyingDelay     *float64 `json:"augerDyingDelay"`
	Damage              *float64 `json:"damage"`
	ExplosionRadius     *float64 `json:"explosionRadius"`
	APCLaunchHoming     *float64 `json:"apcLaunchHoming"`
	APCHoming           *float64 `json:"apcHoming"`
	APCHomingAccel      *float64 `json:"apcHomingAccel"`
	APCDamage           *float64 `json:"apcDamage"`
	APCExplosionRadius  *float64 `json:"apcExplosionRadius"`
	GiveUpSpeed         *float64 `json:"giveUpSpeed"`
	Gravity             *float64 `json:"gravity"`
	ReloadSeconds       *float64 `json:"reloadSeconds"`
	PracticeClass       *string  `json:"practiceClass"`
	TightTurnClass      *string  `json:"tightTurnClass"`
}

type brushConfig struct {
	Name string     `json:"name"`
	Mins [3]float64 `json:"mins"`
	Maxs [3]float64 `json:"maxs"`
	Sky  bool       `json:"sky"`
}

type levelConfig struct {
	Brushes []brushConfig `json:"brushes"`
	Water   []brushConfig `json:"water"`
}

type worldConfig struct {
	Guidance *guidanceConfig `json:"guidance"`
	Level    *levelConfig    `json:"level"`
}

// GuidanceParamOverrides represents optional command-line overrides for tuning missile guidance.
type GuidanceParamOverrides struct {
	MissileSpeed    *float64
	HomingSpeed     *float64
	IgniteDelay     *float64
	AccelerateDelay *float64
	AugerTimeout    *float64
	Damage          *float64
	ExplosionRadius *float64
	APCHoming       *float64
	GiveUpSpeed     *float64
	Gravity         *float64
	ReloadSeconds   *float64
}

func (o GuidanceParamOverrides) apply(base GuidanceParams) GuidanceParams {
	if o.MissileSpeed != nil {
		base.MissileSpeed = *o.MissileSpeed
	}
	if o.HomingSpeed != nil {
		base.HomingSpeed = *o.HomingSpeed
	}
	if o.IgniteDelay != nil {
		base.IgniteDelay = *o.IgniteDelay
	}
	if o.AccelerateDelay != nil {
		base.AccelerateDelay = *o.AccelerateDelay
	}
	if o.AugerTimeout != nil {
		base.AugerTimeout = *o.AugerTimeout
	}
	if o.Damage != nil {
		base.Damage = *o.Damage
	}
	if o.ExplosionRadius != nil {
		base.ExplosionRadius = *o.ExplosionRadius
	}
	if o.APCHoming != nil {
		base.APCHoming = *o.APCHoming
	}
	if o.GiveUpSpeed != nil {
		base.GiveUpSpeed = *o.GiveUpSpeed
	}
	if o.Gravity != nil {
		base.Gravity = *o.Gravity
	}
	if o.ReloadSeconds != nil {
		base.ReloadSeconds = *o.ReloadSeconds
	}
	return SanitizeGuidanceParams(base)
}

func (o GuidanceParamOverrides) empty() bool {
	return o == GuidanceParamOverrides{}
}

func mergeGuidanceConfig(base GuidanceParams, cfg *guidanceConfig) GuidanceParams {
	if cfg == nil {
		return base
	}
	if cfg.UseCustomDetonators != nil {
		base.UseCustomDetonators = *cfg.UseCustomDetonators
	}
	if cfg.DotDangerSounds != nil {
		base.DotDangerSounds = *cfg.DotDangerSounds
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&base.MissileSpeed, cfg.MissileSpeed)
	setFloat(&base.LaunchSpeed, cfg.LaunchSpeed)
	setFloat(&base.LaunchLift, cfg.LaunchLift)
	setFloat(&base.IgniteDelay, cfg.IgniteDelay)
	setFloat(&base.AccelerateDelay, cfg.AccelerateDelay)
	setFloat(&base.HomingSpeed, cfg.HomingSpeed)
	setFloat(&base.AugerMargin, cfg.AugerMargin)
	setFloat(&base.AugerTimeout, cfg.AugerTimeout)
	setFloat(&base.AugerDyingDelay, cfg.AugerDyingDelay)
	setFloat(&base.Damage, cfg.Damage)
	setFloat(&base.ExplosionRadius, cfg.ExplosionRadius)
	setFloat(&base.APCLaunchHoming, cfg.APCLaunchHoming)
	setFloat(&base.APCHoming, cfg.APCHoming)
	setFloat(&base.APCHomingAccel, cfg.APCHomingAccel)
	setFloat(&base.APCDamage, cfg.APCDamage)
	setFloat(&base.APCExplosionRadius, cfg.APCExplosionRadius)
	setFloat(&base.GiveUpSpeed, cfg.GiveUpSpeed)
	setFloat(&base.Gravity, cfg.Gravity)
	setFloat(&base.ReloadSeconds, cfg.ReloadSeconds)
	if cfg.PracticeClass != nil {
		base.PracticeClass = *cfg.PracticeClass
	}
	if cfg.TightTurnClass != nil {
		base.TightTurnClass = *cfg.TightTurnClass
	}
	return SanitizeGuidanceParams(base)
}

func loadWorldConfig(path string) (worldConfig, error) {
	var cfg worldConfig
	if path == "" {
		return cfg, nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read world config %q: %w", cleanPath, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return worldConfig{}, fmt.Errorf("parse world config %q: %w", cleanPath, err)
	}
	return cfg, nil
}

func loadGuidanceParamsFromFile(path string, base GuidanceParams) (GuidanceParams, error) {
	cfg, err := loadWorldConfig(path)
	if err != nil {
		return SanitizeGuidanceParams(base), err
	}
	if cfg.Guidance == nil {
		return SanitizeGuidanceParams(base), nil
	}
	return mergeGuidanceConfig(base, cfg.Guidance), nil
}

func applyGuidanceOverrides(base GuidanceParams, overrides GuidanceParamOverrides) GuidanceParams {
	return overrides.apply(base)
}

func toBrush(b brushConfig, water bool) collide.Brush {
	return collide.Brush{
		Name:  b.Name,
		Mins:  Vec3{X: b.Mins[0], Y: b.Mins[1], Z: b.Mins[2]},
		Maxs:  Vec3{X: b.Maxs[0], Y: b.Maxs[1], Z: b.Maxs[2]},
		Sky:   b.Sky && !water,
		Water: water,
	}
}

// buildLevel indexes the configured brushes. A missing level section yields
// an empty level, which traces as open space.
func buildLevel(cfg *levelConfig) (*collide.Level, error) {
	if cfg == nil {
		return collide.NewLevel(nil)
	}
	brushes := make([]collide.Brush, 0, len(cfg.Brushes)+len(cfg.Water))
	for _, b := range cfg.Brushes {
		brushes = append(brushes, toBrush(b, false))
	}
	for _, b := range cfg.Water {
		brushes = append(brushes, toBrush(b, true))
	}
	level, err := collide.NewLevel(brushes)
	if err != nil {
		return nil, fmt.Errorf("build level: %w", err)
	}
	return level, nil
}
