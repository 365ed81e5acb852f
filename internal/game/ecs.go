package game

import (
	"fmt"
	"sort"
)

// EntityID is a generational handle. The zero value never refers to a live
// entity, and a handle goes stale as soon as its slot is recycled.
type EntityID struct {
	Index uint32
	Gen   uint32
}

func (id EntityID) IsZero() bool { return id.Index == 0 }

func (id EntityID) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("e%d.%d", id.Index, id.Gen)
}

// ParseEntityID reverses String. "none" and "" parse to the zero handle.
func ParseEntityID(s string) (EntityID, error) {
	if s == "" || s == "none" {
		return EntityID{}, nil
	}
	var id EntityID
	if _, err := fmt.Sscanf(s, "e%d.%d", &id.Index, &id.Gen); err != nil {
		return EntityID{}, fmt.Errorf("entity id %q: %w", s, err)
	}
	return id, nil
}

type ComponentKey string

type World struct {
	gens       []uint32
	alive      []bool
	free       []uint32
	components map[ComponentKey]map[EntityID]any
	onRemove   []func(EntityID)
}

type Transform struct {
	Pos    Vec3
	Vel    Vec3
	Angles Angles
}

type SolidFlags uint8

const (
	SolidNot SolidFlags = 1 << iota
	SolidTrigger
	SolidVolumeContents
)

type TakeDamageMode uint8

const (
	TakeDamageNo TakeDamageMode = iota
	TakeDamageEventsOnly
	TakeDamageYes
)

// Body is the collidable, damageable part of an entity. Mins and Maxs are
// relative to the transform position.
type Body struct {
	Class      string
	Name       string
	Mins       Vec3
	Maxs       Vec3
	Solid      SolidFlags
	TakeDamage TakeDamageMode
	Health     float64
	MaxHealth  float64
	Team       int
	Weapon     bool // belongs to the weapon collision group
	Dying      bool
}

func (b *Body) IsSolid() bool { return b.Solid&SolidNot == 0 }

func (b *Body) Center(pos Vec3) Vec3 {
	return pos.Add(b.Mins.Add(b.Maxs).Scale(0.5))
}

type OwnerComponent struct {
	Owner EntityID
}

type HistoryComponent struct {
	History *History
}

// TrailComponent is the smoke trail attached to a flying missile.
type TrailComponent struct {
	Missile  EntityID
	Damaged  bool
	Lifetime float64 // 0 means until the missile releases it
	BornAt   float64
}

type DestroyedComponent struct {
	DestroyedAt float64
}

const (
	CompTransform  ComponentKey = "transform"
	CompBody       ComponentKey = "body"
	CompOwner      ComponentKey = "owner"
	CompHistory    ComponentKey = "history"
	CompMissile    ComponentKey = "missile"
	CompDesignator ComponentKey = "designator"
	CompAimHint    ComponentKey = "aim_hint"
	CompLauncher   ComponentKey = "launcher"
	CompTrail      ComponentKey = "trail"
	CompDestroyed  ComponentKey = "destroyed"
)

func (w *World) Transform(id EntityID) *Transform {
	if v, ok := w.GetComponent(id, CompTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) Body(id EntityID) *Body {
	if v, ok := w.GetComponent(id, CompBody); ok {
		if t, ok := v.(*Body); ok {
			return t
		}
	}
	return nil
}

func (w *World) Owner(id EntityID) *OwnerComponent {
	if v, ok := w.GetComponent(id, CompOwner); ok {
		if t, ok := v.(*OwnerComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) HistoryComponent(id EntityID) *HistoryComponent {
	if v, ok := w.GetComponent(id, CompHistory); ok {
		if t, ok := v.(*HistoryComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) MissileData(id EntityID) *MissileComponent {
	if v, ok := w.GetComponent(id, CompMissile); ok {
		if t, ok := v.(*MissileComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) Designator(id EntityID) *Designator {
	if v, ok := w.GetComponent(id, CompDesignator); ok {
		if t, ok := v.(*Designator); ok {
			return t
		}
	}
	return nil
}

func (w *World) AimHint(id EntityID) *AimHint {
	if v, ok := w.GetComponent(id, CompAimHint); ok {
		if t, ok := v.(*AimHint); ok {
			return t
		}
	}
	return nil
}

func (w *World) Launcher(id EntityID) *Launcher {
	if v, ok := w.GetComponent(id, CompLauncher); ok {
		if t, ok := v.(*Launcher); ok {
			return t
		}
	}
	return nil
}

func (w *World) Trail(id EntityID) *TrailComponent {
	if v, ok := w.GetComponent(id, CompTrail); ok {
		if t, ok := v.(*TrailComponent); ok {
			return t
		}
	}
	return nil
}

func (w *World) DestroyedData(id EntityID) *DestroyedComponent {
	if v, ok := w.GetComponent(id, CompDestroyed); ok {
		if t, ok := v.(*DestroyedComponent); ok {
			return t
		}
	}
	return nil
}

// OwnerOf returns the owning entity or the zero handle.
func (w *World) OwnerOf(id EntityID) EntityID {
	if o := w.Owner(id); o != nil {
		return o.Owner
	}
	return EntityID{}
}

func newWorld() *World {
	return &World{
		gens:       []uint32{0},
		alive:      []bool{false},
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) NewEntity() EntityID {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.gens))
		w.gens = append(w.gens, 1)
		w.alive = append(w.alive, false)
	}
	w.alive[idx] = true
	return EntityID{Index: idx, Gen: w.gens[idx]}
}

// OnRemove registers a hook run before an entity's components are dropped.
func (w *World) OnRemove(fn func(EntityID)) {
	w.onRemove = append(w.onRemove, fn)
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	if !w.Exists(id) {
		return
	}
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) RemoveComponent(id EntityID, key ComponentKey) {
	if store, ok := w.components[key]; ok {
		delete(store, id)
	}
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) HasComponent(id EntityID, key ComponentKey) bool {
	if store, ok := w.components[key]; ok {
		_, ok := store[id]
		return ok
	}
	return false
}

func (w *World) RemoveEntity(id EntityID) {
	if !w.Exists(id) {
		return
	}
	for _, fn := range w.onRemove {
		fn(id)
	}
	for _, store := range w.components {
		delete(store, id)
	}
	w.alive[id.Index] = false
	w.gens[id.Index]++
	w.free = append(w.free, id.Index)
}

func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	ids := make([]EntityID, 0, len(first))
	for id := range first {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Index < ids[j].Index })
	for _, id := range ids {
		if !w.Exists(id) {
			continue
		}
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}

// Exists reports whether the handle still refers to a live entity.
func (w *World) Exists(id EntityID) bool {
	if id.Index == 0 || int(id.Index) >= len(w.gens) {
		return false
	}
	return w.alive[id.Index] && w.gens[id.Index] == id.Gen
}

// Live is Exists minus entities already marked for removal this tick.
func (w *World) Live(id EntityID) bool {
	return w.Exists(id) && !w.HasComponent(id, CompDestroyed)
}

func (w *World) Count() int {
	n := 0
	for _, a := range w.alive {
		if a {
			n++
		}
	}
	return n
}
