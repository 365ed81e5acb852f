package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"LaserRocket/internal/game"
	. "LaserRocket/internal/game"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	maxClientsPerRoom = 8
	maxPendingReplies = 32
)

var (
	errUnknownCommand = errors.New("unknown command")
	errNoMissile      = errors.New("no missile in flight")
	errBadEntity      = errors.New("entity not found")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// sendProtoMessage wraps a protobuf struct in an envelope and sends it as a binary WebSocket frame
func sendProtoMessage(conn *websocket.Conn, kind string, payload *structpb.Struct) error {
	data, err := marshalEnvelope(kind, payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

func parseFloatOverride(values url.Values, key string) (*float64, bool) {
	raw := values.Get(key)
	if raw == "" {
		return nil, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &val, true
}

func parseGuidanceOverrides(values url.Values) (GuidanceParamOverrides, bool) {
	var overrides GuidanceParamOverrides
	fields := []struct {
		key string
		dst **float64
	}{
		{"missileSpeed", &overrides.MissileSpeed},
		{"homing", &overrides.HomingSpeed},
		{"igniteDelay", &overrides.IgniteDelay},
		{"accelerateDelay", &overrides.AccelerateDelay},
		{"augerTimeout", &overrides.AugerTimeout},
		{"damage", &overrides.Damage},
		{"radius", &overrides.ExplosionRadius},
		{"apcHoming", &overrides.APCHoming},
		{"giveUpSpeed", &overrides.GiveUpSpeed},
		{"gravity", &overrides.Gravity},
		{"reload", &overrides.ReloadSeconds},
	}
	for _, f := range fields {
		if v, ok := parseFloatOverride(values, f.key); ok {
			*f.dst = v
		}
	}
	return overrides, !overrides.empty()
}

func parseIntParam(values url.Values, key string, def int) int {
	raw := values.Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

type stateMsg struct {
	Type        string          `json:"type"`
	Now         float64         `json:"now"`
	Room        string          `json:"room"`
	Me          string          `json:"me"`
	Launcher    *launcherDTO    `json:"launcher,omitempty"`
	Missiles    []missileDTO    `json:"missiles"`
	Designators []designatorDTO `json:"designators"`
	Bodies      []bodyDTO       `json:"bodies"`
	Dangers     []dangerDTO     `json:"dangers"`
}

// session is one connected operator: an actor body holding a launcher.
type session struct {
	room     *Room
	actor    EntityID
	launcher EntityID
	aim      Vec3
	hasAim   bool
	replies  chan any
}

// openSessionLocked spawns the operator's body and launcher. The caller must
// hold room.Mu.
func openSessionLocked(room *Room, start Vec3, team, ammo int) *session {
	sess := &session{room: room, replies: make(chan any, maxPendingReplies)}
	sess.actor = room.SpawnBody(BodySpec{
		Class:      "player",
		Pos:        start,
		Mins:       Vec3{X: -16, Y: -16},
		Maxs:       Vec3{X: 16, Y: 16, Z: 72},
		Health:     100,
		TakeDamage: TakeDamageYes,
		Team:       team,
	})
	sess.launcher = room.CreateLauncher(sess.actor, ammo)
	return sess
}

// closeSessionLocked removes everything the operator spawned for itself.
func closeSessionLocked(sess *session) {
	room := sess.room
	if l := room.World.Launcher(sess.launcher); l != nil {
		room.RemoveEntity(l.Designator)
	}
	room.RemoveEntity(sess.launcher)
	room.RemoveEntity(sess.actor)
}

func (s *session) reply(kind string, payload any) {
	select {
	case s.replies <- map[string]any{"type": kind, "payload": payload}:
	default:
		log.Printf("room %s: dropping %s reply for %s", s.room.ID, kind, s.actor)
	}
}

type liveConn struct {
	conn     *websocket.Conn
	sendTick *time.Ticker
}

func serveWS(sim *Sim, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	roomID := query.Get("room")
	if roomID == "" {
		roomID = "default"
	}
	team := parseIntParam(query, "team", 1)
	ammo := parseIntParam(query, "ammo", LauncherDefaultAmmo)
	var start Vec3
	for key, dst := range map[string]*float64{"x": &start.X, "y": &start.Y, "z": &start.Z} {
		if v, ok := parseFloatOverride(query, key); ok {
			*dst = *v
		}
	}
	overrides, hasOverrides := parseGuidanceOverrides(query)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	lc := &liveConn{
		conn:     conn,
		sendTick: time.NewTicker(stateInterval),
	}

	room, feed := sim.join(roomID)
	defer sim.leave(feed)

	room.Mu.Lock()
	feed.mu.Lock()
	clients := feed.clients
	feed.mu.Unlock()
	if clients > maxClientsPerRoom {
		room.Mu.Unlock()
		full, _ := structpb.NewStruct(map[string]any{"message": "room full"})
		_ = sendProtoMessage(conn, "room_full", full)
		conn.Close()
		return
	}
	if clients == 1 && hasOverrides {
		params := applyGuidanceOverrides(room.ParamsLocked(), overrides)
		room.SetParamsLocked(params)
		log.Printf("room %s guidance overrides: speed %.0f homing %.3f damage %.0f", room.ID, params.MissileSpeed, params.HomingSpeed, params.Damage)
	}
	sess := openSessionLocked(room, start, team, ammo)
	room.Mu.Unlock()

	cursor := feed.cursor()
	log.Printf("room %s: operator %s joined (team %d, ammo %d)", room.ID, sess.actor, team, ammo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var inbound inboundMessage
			switch msgType {
			case websocket.BinaryMessage:
				inbound, err = inboundFromProto(data)
				if err != nil {
					log.Printf("%v", err)
					continue
				}
			case websocket.TextMessage:
				if err := json.Unmarshal(data, &inbound); err != nil {
					log.Printf("invalid JSON message: %v", err)
					continue
				}
			default:
				log.Printf("Received unsupported WebSocket message type %d", msgType)
				continue
			}
			if err := handleCommand(sess, inbound); err != nil {
				sess.reply("error", errorDTO{Command: inbound.Type, Message: err.Error()})
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-lc.sendTick.C:
				room.Mu.Lock()
				msg := buildState(room, sess)
				room.Mu.Unlock()

				if err := sendProtoMessage(conn, "state", stateToProto(msg)); err != nil {
					log.Printf("send error: %v", err)
					cancel()
					return
				}

				var events []game.Event
				events, cursor = feed.since(cursor)
				if len(events) > 0 {
					dtos := make([]eventDTO, len(events))
					for i, ev := range events {
						dtos[i] = toEventDTO(ev)
					}
					if err := conn.WriteJSON(map[string]any{"type": "events", "payload": dtos}); err != nil {
						log.Printf("send json event error: %v", err)
						cancel()
						return
					}
				}
			drain:
				for {
					select {
					case frame := <-sess.replies:
						if err := conn.WriteJSON(frame); err != nil {
							log.Printf("send json reply error: %v", err)
							cancel()
							return
						}
					default:
						break drain
					}
				}
			}
		}
	}()

	<-ctx.Done()
	lc.sendTick.Stop()
	conn.Close()

	room.Mu.Lock()
	closeSessionLocked(sess)
	room.Mu.Unlock()
	log.Printf("room %s: operator %s left", room.ID, sess.actor)
}

// buildState collects what one operator sees. The caller must hold room.Mu.
func buildState(room *Room, sess *session) stateMsg {
	snap := room.SnapshotLocked()
	msg := stateMsg{
		Type:        "state",
		Now:         snap.Now,
		Room:        room.ID,
		Me:          sess.actor.String(),
		Missiles:    make([]missileDTO, 0, len(snap.Missiles)),
		Designators: make([]designatorDTO, 0, len(snap.Designators)),
		Bodies:      make([]bodyDTO, 0, len(snap.Bodies)),
		Dangers:     make([]dangerDTO, 0, len(snap.Dangers)),
	}
	for _, m := range snap.Missiles {
		msg.Missiles = append(msg.Missiles, missileDTO{
			ID:     m.ID.String(),
			Class:  m.Class,
			Owner:  m.Owner.String(),
			Self:   m.Owner == sess.actor,
			Mode:   m.Mode.String(),
			State:  m.State.String(),
			Pos:    toVecDTO(m.Pos),
			Vel:    toVecDTO(m.Vel),
			Pitch:  m.Angles.Pitch,
			Yaw:    m.Angles.Yaw,
			Health: m.Health,
			Homing: m.Homing,
			Guided: m.Guided,
		})
	}
	for _, d := range snap.Designators {
		dto := designatorDTO{
			ID:      d.ID.String(),
			Owner:   d.Owner.String(),
			Self:    d.Owner == sess.actor,
			Pos:     toVecDTO(d.Pos),
			On:      d.On,
			Visible: d.Visible,
		}
		if !d.Target.IsZero() {
			dto.Target = d.Target.String()
		}
		msg.Designators = append(msg.Designators, dto)
	}
	for _, b := range snap.Bodies {
		msg.Bodies = append(msg.Bodies, bodyDTO{
			ID:     b.ID.String(),
			Class:  b.Class,
			Name:   b.Name,
			Self:   b.ID == sess.actor,
			Pos:    toVecDTO(b.Pos),
			Vel:    toVecDTO(b.Vel),
			Mins:   toVecDTO(b.Mins),
			Maxs:   toVecDTO(b.Maxs),
			Health: b.Health,
			Team:   b.Team,
			Dying:  b.Dying,
		})
	}
	for _, d := range snap.Dangers {
		msg.Dangers = append(msg.Dangers, dangerDTO{Pos: toVecDTO(d.Pos), Radius: d.Radius, ExpiresAt: d.ExpiresAt})
	}
	if l := room.World.Launcher(sess.launcher); l != nil {
		dto := &launcherDTO{
			ID:          sess.launcher.String(),
			Ammo:        l.Ammo,
			Guiding:     l.Guiding,
			APC:         l.APC,
			NextFireAt:  l.NextFireAt,
			ReloadUntil: l.ReloadUntil,
		}
		if err := l.Ready(room.World, room.Now); err != nil {
			dto.NotReady = err.Error()
		} else {
			dto.Ready = true
		}
		if !l.Missile.IsZero() {
			dto.Missile = l.Missile.String()
		}
		msg.Launcher = dto
	}
	return msg
}

/* ------------------------------ Commands ----------------------------- */

var damageKinds = map[string]DamageType{
	"":                DamageBullet,
	"bullet":          DamageBullet,
	"blast":           DamageBlast,
	"missile_defense": DamageMissileDefense,
	"airboat":         DamageAirboat,
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// handleCommand applies one operator command under the room lock.
func handleCommand(s *session, msg inboundMessage) error {
	switch msg.Type {
	case "aim":
		var payload aimDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return handleAim(s, payload)
	case "fire":
		var payload fireDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return handleFire(s, payload)
	case "guide":
		var payload guideDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return handleGuide(s, payload)
	case "toggle_guide":
		return withRoom(s, func(r *Room) error {
			r.ToggleGuiding(s.launcher)
			return nil
		})
	case "launcher_mode":
		var payload launcherModeDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withRoom(s, func(r *Room) error {
			l := r.World.Launcher(s.launcher)
			if l == nil {
				return ErrNoLauncher
			}
			l.APC = payload.APC
			return nil
		})
	case "dumbfire":
		return withMissile(s, func(r *Room, id EntityID) error {
			r.DumbFire(id)
			return nil
		})
	case "missile_hint":
		var payload missileHintDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withMissile(s, func(r *Room, id EntityID) error {
			r.SetGuidanceHint(id, payload.Name)
			return nil
		})
	case "missile_target":
		var payload entityDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		target, err := ParseEntityID(payload.Entity)
		if err != nil {
			return err
		}
		return withMissile(s, func(r *Room, id EntityID) error {
			if !target.IsZero() && !r.World.Live(target) {
				return fmt.Errorf("%w: %s", errBadEntity, payload.Entity)
			}
			r.AimAtSpecificTarget(id, target)
			return nil
		})
	case "disable_guiding":
		return withMissile(s, func(r *Room, id EntityID) error {
			r.DisableGuiding(id)
			return nil
		})
	case "fast_mode":
		return withMissile(s, func(r *Room, id EntityID) error {
			r.EnableFastMode(id)
			return nil
		})
	case "auger_delay", "explode_delay":
		var payload delayDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		if payload.Delay < 0 {
			return fmt.Errorf("negative delay %v", payload.Delay)
		}
		return withMissile(s, func(r *Room, id EntityID) error {
			if msg.Type == "auger_delay" {
				r.AugerDelay(id, payload.Delay)
			} else {
				r.ExplodeDelay(id, payload.Delay)
			}
			return nil
		})
	case "spawn_target":
		var payload spawnTargetDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return handleSpawnTarget(s, payload)
	case "remove_entity":
		var payload entityDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withEntity(s, payload.Entity, func(r *Room, id EntityID) error {
			r.RemoveEntity(id)
			return nil
		})
	case "add_detonator":
		var payload detonatorDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withEntity(s, payload.Entity, func(r *Room, id EntityID) error {
			r.AddDetonationZone(id, payload.Radius, payload.Height)
			return nil
		})
	case "remove_detonator":
		var payload detonatorDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withEntity(s, payload.Entity, func(r *Room, id EntityID) error {
			r.RemoveDetonationZone(id)
			return nil
		})
	case "add_hint":
		var payload hintDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return withRoom(s, func(r *Room) error {
			r.CreateAimHint(payload.Name, payload.Target, AxisAlignedOBB(Vec3{}, payload.Mins.vec(), payload.Maxs.vec()))
			return nil
		})
	case "damage":
		var payload damageDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		kind, ok := damageKinds[payload.Kind]
		if !ok {
			return fmt.Errorf("unknown damage kind %q", payload.Kind)
		}
		return withEntity(s, payload.Entity, func(r *Room, id EntityID) error {
			r.ApplyDamage(id, DamageInfo{Amount: payload.Amount, Type: kind, Attacker: s.actor})
			return nil
		})
	case "spawn_bot":
		var payload spawnBotDTO
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		return handleSpawnBot(s, payload)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, msg.Type)
	}
}

func withRoom(s *session, fn func(r *Room) error) error {
	s.room.Mu.Lock()
	defer s.room.Mu.Unlock()
	return fn(s.room)
}

func withEntity(s *session, raw string, fn func(r *Room, id EntityID) error) error {
	id, err := ParseEntityID(raw)
	if err != nil {
		return err
	}
	return withRoom(s, func(r *Room) error {
		if !r.World.Live(id) {
			return fmt.Errorf("%w: %s", errBadEntity, raw)
		}
		return fn(r, id)
	})
}

// withMissile runs fn on the session launcher's live missile.
func withMissile(s *session, fn func(r *Room, id EntityID) error) error {
	return withRoom(s, func(r *Room) error {
		l := r.World.Launcher(s.launcher)
		if l == nil || !r.World.Live(l.Missile) {
			return errNoMissile
		}
		return fn(r, l.Missile)
	})
}

func muzzleOf(r *Room, actor EntityID) Vec3 {
	return BodyTarget(r.World, actor, Vec3{})
}

func handleAim(s *session, payload aimDTO) error {
	return withRoom(s, func(r *Room) error {
		l := r.World.Launcher(s.launcher)
		if l == nil {
			return ErrNoLauncher
		}
		s.aim = payload.Target.vec()
		s.hasAim = true
		muzzle := muzzleOf(r, s.actor)
		dir, dist := s.aim.Sub(muzzle).Normalize()
		if dist == 0 {
			return nil
		}
		r.UpdateLaser(s.launcher, muzzle, muzzle.MA(MaxTraceLength, dir))
		return nil
	})
}

func handleFire(s *session, payload fireDTO) error {
	return withRoom(s, func(r *Room) error {
		muzzle := muzzleOf(r, s.actor)
		var angles Angles
		switch {
		case payload.Target != nil:
			angles = AimAngles(muzzle, payload.Target.vec())
		case payload.Pitch != nil || payload.Yaw != nil:
			if payload.Pitch != nil {
				angles.Pitch = *payload.Pitch
			}
			if payload.Yaw != nil {
				angles.Yaw = *payload.Yaw
			}
		case s.hasAim:
			angles = AimAngles(muzzle, s.aim)
		}
		id, err := r.Fire(s.launcher, muzzle, angles)
		if err != nil {
			return err
		}
		s.reply("fired", map[string]string{"missile": id.String()})
		return nil
	})
}

func handleGuide(s *session, payload guideDTO) error {
	return withRoom(s, func(r *Room) error {
		l := r.World.Launcher(s.launcher)
		if l == nil {
			return ErrNoLauncher
		}
		if !payload.On {
			r.StopGuiding(s.launcher)
			l.HideGuiding = payload.Hide
			return nil
		}
		if l.Guiding && l.HideGuiding != payload.Hide {
			r.SuppressGuiding(s.launcher, payload.Hide)
		} else {
			l.HideGuiding = payload.Hide
		}
		r.StartGuiding(s.launcher)
		if s.hasAim && l.Guiding {
			muzzle := muzzleOf(r, s.actor)
			dir, _ := s.aim.Sub(muzzle).Normalize()
			r.UpdateLaser(s.launcher, muzzle, muzzle.MA(MaxTraceLength, dir))
		}
		return nil
	})
}

func handleSpawnTarget(s *session, payload spawnTargetDTO) error {
	size := payload.Size
	if size <= 0 {
		size = 16
	}
	height := payload.Height
	if height <= 0 {
		height = 2 * size
	}
	health := payload.Health
	if health <= 0 {
		health = 100
	}
	class := payload.Class
	if class == "" {
		class = ClassBullseye
	}
	return withRoom(s, func(r *Room) error {
		id := r.SpawnBody(BodySpec{
			Class:      class,
			Name:       payload.Name,
			Pos:        payload.Pos.vec(),
			Vel:        payload.Vel.vec(),
			Mins:       Vec3{X: -size, Y: -size},
			Maxs:       Vec3{X: size, Y: size, Z: height},
			Health:     health,
			TakeDamage: TakeDamageYes,
			Team:       payload.Team,
		})
		s.reply("spawned", map[string]string{"entity": id.String()})
		return nil
	})
}

func handleSpawnBot(s *session, payload spawnBotDTO) error {
	var behavior AIBehavior
	switch payload.Behavior {
	case "", "gunner":
		behavior = NewGunnerBehavior()
	case "dodge":
		behavior = NewDodgeBehavior()
	default:
		return fmt.Errorf("unknown bot behavior %q", payload.Behavior)
	}
	ammo := payload.Ammo
	if ammo <= 0 {
		ammo = LauncherDefaultAmmo
	}
	team := payload.Team
	if team == 0 {
		team = 2
	}
	return withRoom(s, func(r *Room) error {
		actor := r.SpawnBody(BodySpec{
			Class:      "bot",
			Pos:        payload.Pos.vec(),
			Mins:       Vec3{X: -16, Y: -16},
			Maxs:       Vec3{X: 16, Y: 16, Z: 72},
			Health:     100,
			TakeDamage: TakeDamageYes,
			Team:       team,
		})
		var launcher EntityID
		if _, gunner := behavior.(*GunnerBehavior); gunner {
			launcher = r.CreateLauncher(actor, ammo)
			r.World.Launcher(launcher).NPC = true
		}
		r.AddBot(actor, launcher, behavior)
		s.reply("spawned", map[string]string{"entity": actor.String()})
		return nil
	})
}
