package server

import (
	"context"
	"log"
	"sync"
	"time"

	"LaserRocket/internal/game"
	"LaserRocket/internal/recorder"
)

const (
	maxFeedEvents   = 1024
	idleRoomTimeout = 60 * time.Second
	simInterval     = time.Second / time.Duration(game.SimHz)
	stateInterval   = time.Second / time.Duration(game.UpdateRateHz)
)

// roomFeed buffers the events a room produced so every connected client can
// read them at its own pace, and records the room's flights.
type roomFeed struct {
	mu        sync.Mutex
	events    []game.Event
	seq       uint64 // sequence number of the newest buffered event
	clients   int
	idleSince time.Time
	lastNow   float64 // room clock at the last step, owned by the tick loop
	tracker   *recorder.Tracker
}

func (f *roomFeed) push(events []game.Event) {
	if len(events) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	f.seq += uint64(len(events))
	if over := len(f.events) - maxFeedEvents; over > 0 {
		f.events = append([]game.Event(nil), f.events[over:]...)
	}
}

// since returns buffered events newer than cursor and the new cursor. A
// client that fell behind the buffer skips what was dropped.
func (f *roomFeed) since(cursor uint64) ([]game.Event, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor >= f.seq {
		return nil, f.seq
	}
	first := f.seq - uint64(len(f.events)) + 1
	start := 0
	if cursor >= first {
		start = int(cursor - first + 1)
	}
	out := append([]game.Event(nil), f.events[start:]...)
	return out, f.seq
}

func (f *roomFeed) cursor() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}

// Sim drives every room in the hub at the simulation rate.
type Sim struct {
	hub   *game.Hub
	saver recorder.FlightSaver

	mu    sync.Mutex
	feeds map[string]*roomFeed
}

func NewSim(hub *game.Hub, saver recorder.FlightSaver) *Sim {
	return &Sim{hub: hub, saver: saver, feeds: map[string]*roomFeed{}}
}

func (s *Sim) feed(roomID string) *roomFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feeds[roomID]
	if !ok {
		f = &roomFeed{tracker: recorder.NewTracker(roomID, s.saver), idleSince: time.Now()}
		s.feeds[roomID] = f
	}
	return f
}

// join returns the room and its feed, counting the caller as a client.
func (s *Sim) join(roomID string) (*game.Room, *roomFeed) {
	room := s.hub.GetRoom(roomID)
	f := s.feed(roomID)
	f.mu.Lock()
	f.clients++
	f.mu.Unlock()
	return room, f
}

func (s *Sim) leave(f *roomFeed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients--
	if f.clients <= 0 {
		f.clients = 0
		f.idleSince = time.Now()
	}
}

// step advances every room by one tick and records its flights.
func (s *Sim) step() {
	for _, room := range s.hub.Snapshot() {
		f := s.feed(room.ID)
		room.Mu.Lock()
		room.TickLocked()
		events := room.DrainEventsLocked()
		missiles := room.MissileSnapshotsLocked()
		now := room.Now
		room.Mu.Unlock()

		f.push(events)
		f.lastNow = now
		f.tracker.Observe(now, events, missiles)
	}
}

// cleanupIdleRooms drops rooms nobody has watched for idleRoomTimeout.
func (s *Sim) cleanupIdleRooms(now time.Time) {
	s.mu.Lock()
	var idle []string
	for id, f := range s.feeds {
		f.mu.Lock()
		if f.clients == 0 && now.Sub(f.idleSince) >= idleRoomTimeout {
			idle = append(idle, id)
		}
		f.mu.Unlock()
	}
	for _, id := range idle {
		f := s.feeds[id]
		delete(s.feeds, id)
		s.hub.RemoveRoom(id)
		f.tracker.Flush(f.lastNow)
		log.Printf("room %s idle, removed", id)
	}
	s.mu.Unlock()
}

func (s *Sim) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.feeds {
		f.tracker.Flush(f.lastNow)
	}
}

// Run ticks rooms until ctx is cancelled, then saves flights still in the air.
func (s *Sim) Run(ctx context.Context) {
	ticker := time.NewTicker(simInterval)
	defer ticker.Stop()
	cleanup := time.NewTicker(idleRoomTimeout)
	defer cleanup.Stop()
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case <-ticker.C:
			s.step()
		case now := <-cleanup.C:
			s.cleanupIdleRooms(now)
		}
	}
}
