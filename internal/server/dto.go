package server

import "LaserRocket/internal/game"

type vecDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVecDTO(v game.Vec3) vecDTO { return vecDTO{X: v.X, Y: v.Y, Z: v.Z} }

func (v vecDTO) vec() game.Vec3 { return game.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

type missileDTO struct {
	ID     string  `json:"id"`
	Class  string  `json:"class"`
	Owner  string  `json:"owner"`
	Self   bool    `json:"self"`
	Mode   string  `json:"mode"`
	State  string  `json:"state"`
	Pos    vecDTO  `json:"pos"`
	Vel    vecDTO  `json:"vel"`
	Pitch  float64 `json:"pitch"`
	Yaw    float64 `json:"yaw"`
	Health float64 `json:"health"`
	Homing float64 `json:"homing"`
	Guided bool    `json:"guided"`
}

type designatorDTO struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Self    bool   `json:"self"`
	Target  string `json:"target,omitempty"`
	Pos     vecDTO `json:"pos"`
	On      bool   `json:"on"`
	Visible bool   `json:"visible"`
}

type bodyDTO struct {
	ID     string  `json:"id"`
	Class  string  `json:"class"`
	Name   string  `json:"name,omitempty"`
	Self   bool    `json:"self"`
	Pos    vecDTO  `json:"pos"`
	Vel    vecDTO  `json:"vel"`
	Mins   vecDTO  `json:"mins"`
	Maxs   vecDTO  `json:"maxs"`
	Health float64 `json:"health"`
	Team   int     `json:"team"`
	Dying  bool    `json:"dying"`
}

type dangerDTO struct {
	Pos       vecDTO  `json:"pos"`
	Radius    float64 `json:"radius"`
	ExpiresAt float64 `json:"expires"`
}

type launcherDTO struct {
	ID          string  `json:"id"`
	Ammo        int     `json:"ammo"`
	Guiding     bool    `json:"guiding"`
	APC         bool    `json:"apc"`
	Ready       bool    `json:"ready"`
	NotReady    string  `json:"not_ready,omitempty"`
	NextFireAt  float64 `json:"next_fire"`
	ReloadUntil float64 `json:"reload_until"`
	Missile     string  `json:"missile,omitempty"`
}

type eventDTO struct {
	Kind      string  `json:"kind"`
	T         float64 `json:"t"`
	Entity    string  `json:"entity"`
	Name      string  `json:"name,omitempty"`
	Pos       vecDTO  `json:"pos"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
}

func toEventDTO(ev game.Event) eventDTO {
	return eventDTO{
		Kind:      string(ev.Kind),
		T:         ev.T,
		Entity:    ev.Entity.String(),
		Name:      ev.Name,
		Pos:       toVecDTO(ev.Pos),
		Magnitude: ev.Magnitude,
		Radius:    ev.Radius,
	}
}

type flightDTO struct {
	ID          string  `json:"id"`
	Room        string  `json:"room"`
	Class       string  `json:"class"`
	Mode        string  `json:"mode"`
	LaunchedAt  float64 `json:"launched_at"`
	EndedAt     float64 `json:"ended_at"`
	Outcome     string  `json:"outcome"`
	SampleCount int     `json:"samples"`
}

/* ----------------------------- Commands ----------------------------- */

// aimDTO points the laser at a world position.
type aimDTO struct {
	Target vecDTO `json:"target"`
}

type fireDTO struct {
	Target *vecDTO  `json:"target,omitempty"`
	Pitch  *float64 `json:"pitch,omitempty"`
	Yaw    *float64 `json:"yaw,omitempty"`
}

type guideDTO struct {
	On   bool `json:"on"`
	Hide bool `json:"hide"`
}

type launcherModeDTO struct {
	APC bool `json:"apc"`
}

type spawnTargetDTO struct {
	Name   string  `json:"name"`
	Class  string  `json:"class"`
	Pos    vecDTO  `json:"pos"`
	Vel    vecDTO  `json:"vel"`
	Size   float64 `json:"size"`
	Height float64 `json:"height"`
	Health float64 `json:"health"`
	Team   int     `json:"team"`
}

type detonatorDTO struct {
	Entity string  `json:"entity"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

type hintDTO struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Mins   vecDTO `json:"mins"`
	Maxs   vecDTO `json:"maxs"`
}

type entityDTO struct {
	Entity string `json:"entity"`
}

type missileHintDTO struct {
	Name string `json:"name"`
}

type delayDTO struct {
	Delay float64 `json:"delay"`
}

type damageDTO struct {
	Entity string  `json:"entity"`
	Amount float64 `json:"amount"`
	Kind   string  `json:"kind"` // bullet, blast, missile_defense or airboat
}

type spawnBotDTO struct {
	Behavior string `json:"behavior"`
	Pos      vecDTO `json:"pos"`
	Team     int    `json:"team"`
	Ammo     int    `json:"ammo"`
}

type errorDTO struct {
	Command string `json:"command"`
	Message string `json:"message"`
}
