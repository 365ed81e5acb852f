package main

import (
	"flag"
	"math"

	"LaserRocket/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	configPath := flag.String("config", "configs/world.json", "path to world/guidance tuning JSON")
	recordPath := flag.String("record", "flights.db", "flight recorder database (empty disables recording)")
	missileSpeed := flag.Float64("missile-speed", math.NaN(), "override missile cruise speed")
	homing := flag.Float64("homing", math.NaN(), "override laser homing blend (0-1)")
	igniteDelay := flag.Float64("ignite-delay", math.NaN(), "override seconds before ignition")
	accelerateDelay := flag.Float64("accelerate-delay", math.NaN(), "override seconds between accelerate and homing")
	augerTimeout := flag.Float64("auger-timeout", math.NaN(), "override auger seconds before detonation")
	damage := flag.Float64("damage", math.NaN(), "override missile blast damage")
	radius := flag.Float64("radius", math.NaN(), "override missile blast radius")
	apcHoming := flag.Float64("apc-homing", math.NaN(), "override APC cruise homing blend (0-1)")
	giveUpSpeed := flag.Float64("give-up-speed", math.NaN(), "override fast-mode speed")
	gravity := flag.Float64("gravity", math.NaN(), "override gravity during unpowered flight")
	reload := flag.Float64("reload", math.NaN(), "override launcher reload seconds")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath
	cfg.RecorderPath = *recordPath

	var overrides server.GuidanceParamOverrides

	if !math.IsNaN(*missileSpeed) {
		val := *missileSpeed
		overrides.MissileSpeed = &val
	}
	if !math.IsNaN(*homing) {
		val := *homing
		overrides.HomingSpeed = &val
	}
	if !math.IsNaN(*igniteDelay) {
		val := *igniteDelay
		overrides.IgniteDelay = &val
	}
	if !math.IsNaN(*accelerateDelay) {
		val := *accelerateDelay
		overrides.AccelerateDelay = &val
	}
	if !math.IsNaN(*augerTimeout) {
		val := *augerTimeout
		overrides.AugerTimeout = &val
	}
	if !math.IsNaN(*damage) {
		val := *damage
		overrides.Damage = &val
	}
	if !math.IsNaN(*radius) {
		val := *radius
		overrides.ExplosionRadius = &val
	}
	if !math.IsNaN(*apcHoming) {
		val := *apcHoming
		overrides.APCHoming = &val
	}
	if !math.IsNaN(*giveUpSpeed) {
		val := *giveUpSpeed
		overrides.GiveUpSpeed = &val
	}
	if !math.IsNaN(*gravity) {
		val := *gravity
		overrides.Gravity = &val
	}
	if !math.IsNaN(*reload) {
		val := *reload
		overrides.ReloadSeconds = &val
	}

	cfg.Overrides = overrides

	server.StartApp(*addr, cfg)
}
