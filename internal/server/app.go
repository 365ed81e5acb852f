package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"LaserRocket/internal/collide"
	. "LaserRocket/internal/game"
	"LaserRocket/internal/recorder"
)

type AppConfig struct {
	ConfigPath   string
	Overrides    GuidanceParamOverrides
	RecorderPath string // empty disables the flight recorder
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath:   "configs/world.json",
		RecorderPath: "flights.db",
	}
}

func resolveGuidanceParams(cfg AppConfig) GuidanceParams {
	params := DefaultGuidanceParams()
	loaded, err := loadGuidanceParamsFromFile(cfg.ConfigPath, params)
	if err != nil {
		log.Printf("guidance config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	params = applyGuidanceOverrides(params, cfg.Overrides)
	return SanitizeGuidanceParams(params)
}

func resolveLevel(cfg AppConfig) *collide.Level {
	world, err := loadWorldConfig(cfg.ConfigPath)
	if err != nil {
		log.Printf("level config: %v (open space)", err)
	}
	level, err := buildLevel(world.Level)
	if err != nil {
		log.Printf("level config: %v (open space)", err)
		level, _ = collide.NewLevel(nil)
	}
	return level
}

func StartApp(addr string, cfg AppConfig) {
	params := resolveGuidanceParams(cfg)
	level := resolveLevel(cfg)
	hub := NewHub(params, func() Tracer { return level })

	var saver recorder.FlightSaver
	var flights flightSource
	if cfg.RecorderPath != "" {
		store, err := recorder.OpenStore(cfg.RecorderPath)
		if err != nil {
			log.Printf("flight recorder: %v (recording disabled)", err)
		} else {
			defer store.Close()
			saver = store
			flights = store
			log.Printf("recording flights to %s", cfg.RecorderPath)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := NewSim(hub, saver)
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		sim.Run(ctx)
	}()

	srv := &http.Server{Addr: addr, Handler: newMux(sim, flights)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting web server on %s (missile speed %.0f, homing %.3f, %d level brushes)\n",
		addr, params.MissileSpeed, params.HomingSpeed, level.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-simDone
}
