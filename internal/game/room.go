package game

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

type Room struct {
	ID          string
	Now         float64
	World       *World
	Designators DesignatorRegistry
	Zones       DetonationZones
	Hints       AimHintRegistry
	Danger      DangerSounds
	Tracer      Tracer
	Bots        map[EntityID]*AIAgent
	Mu          sync.Mutex

	params GuidanceParams
	rng    *rand.Rand
	tick   uint64
	events []Event
}

// NewRoom builds an empty simulation. A nil tracer means open space.
func NewRoom(id string, params GuidanceParams, tracer Tracer) *Room {
	r := &Room{
		ID:     id,
		World:  newWorld(),
		Tracer: tracer,
		Bots:   map[EntityID]*AIAgent{},
		params: SanitizeGuidanceParams(params),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.World.OnRemove(func(id EntityID) {
		if r.World.HasComponent(id, CompDesignator) {
			r.Designators.Remove(id)
		}
		if r.World.HasComponent(id, CompAimHint) {
			r.Hints.Remove(id)
		}
		delete(r.Bots, id)
	})
	return r
}

// Seed makes the room's random wobble reproducible.
func (r *Room) Seed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}

func (r *Room) ParamsLocked() GuidanceParams { return r.params }

func (r *Room) SetParamsLocked(p GuidanceParams) {
	r.params = SanitizeGuidanceParams(p)
}

func (r *Room) randRange(lo, hi float64) float64 {
	return lo + r.rng.Float64()*(hi-lo)
}

type Hub struct {
	Rooms    map[string]*Room
	Mu       sync.Mutex
	params   GuidanceParams
	newTrace func() Tracer
}

func NewHub(params GuidanceParams, tracer func() Tracer) *Hub {
	return &Hub{Rooms: map[string]*Room{}, params: SanitizeGuidanceParams(params), newTrace: tracer}
}

func (h *Hub) GetRoom(id string) *Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	r, ok := h.Rooms[id]
	if !ok {
		var tracer Tracer
		if h.newTrace != nil {
			tracer = h.newTrace()
		}
		r = NewRoom(id, h.params, tracer)
		h.Rooms[id] = r
	}
	return r
}

// RemoveRoom drops a room from the hub. Callers stop ticking it first.
func (h *Hub) RemoveRoom(id string) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	delete(h.Rooms, id)
}

// Snapshot returns the rooms in id order.
func (h *Hub) Snapshot() []*Room {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	rooms := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (r *Room) Tick() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.TickLocked()
}

// TickLocked advances one step. The caller must hold r.Mu.
func (r *Room) TickLocked() {
	r.tick++
	r.Now = float64(r.tick) / SimHz

	r.updateAI()
	updateMissiles(r, Dt)
	moveBodies(r, Dt)
	moveMissiles(r, Dt)
	updateTrails(r)
	recordHistory(r)
	r.Danger.Prune(r.Now)
	sweepDestroyed(r)
}

// BodySpec describes a plain entity to drop into the room.
type BodySpec struct {
	Class      string
	Name       string
	Pos        Vec3
	Vel        Vec3
	Mins       Vec3
	Maxs       Vec3
	Health     float64
	TakeDamage TakeDamageMode
	Solid      SolidFlags
	Team       int
}

func (r *Room) SpawnBody(spec BodySpec) EntityID {
	id := r.World.NewEntity()
	r.World.SetComponent(id, CompTransform, &Transform{Pos: spec.Pos, Vel: spec.Vel})
	r.World.SetComponent(id, CompBody, &Body{
		Class:      spec.Class,
		Name:       spec.Name,
		Mins:       spec.Mins,
		Maxs:       spec.Maxs,
		Solid:      spec.Solid,
		TakeDamage: spec.TakeDamage,
		Health:     spec.Health,
		MaxHealth:  spec.Health,
		Team:       spec.Team,
	})
	history := newHistory(HistoryKeepS, SimHz)
	history.push(Snapshot{T: r.Now, Pos: spec.Pos, Vel: spec.Vel})
	r.World.SetComponent(id, CompHistory, &HistoryComponent{History: history})
	return id
}

// FindEntityByName returns the oldest live entity carrying name.
func (r *Room) FindEntityByName(name string) (EntityID, bool) {
	if name == "" {
		return EntityID{}, false
	}
	var found EntityID
	r.World.ForEach([]ComponentKey{CompBody}, func(id EntityID) {
		if !found.IsZero() || r.World.DestroyedData(id) != nil {
			return
		}
		if body := r.World.Body(id); body.Name == name {
			found = id
		}
	})
	return found, !found.IsZero()
}

// RemoveEntity queues an entity for removal at the end of the tick.
func (r *Room) RemoveEntity(id EntityID) {
	if r.World.Live(id) {
		r.World.SetComponent(id, CompDestroyed, &DestroyedComponent{DestroyedAt: r.Now})
	}
}
