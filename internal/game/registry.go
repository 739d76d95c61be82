// internal/game/registry.go
package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TarVK/themCards/internal/cards"
	"github.com/TarVK/themCards/internal/journal"
)

// Registry is the process-scoped room index: every live room keyed by id,
// plus the subset open to random discovery (non-private rooms with a free
// slot). Constructed once at startup and injected into connection handling
// rather than accessed as ambient state. Rooms with zero players are
// destroyed.
type Registry struct {
	mu        sync.Mutex
	library   *cards.Library
	journal   *journal.Journal
	logger    *logrus.Logger
	all       map[string]*Room
	available map[string]*Room
}

// NewRegistry creates an empty registry backed by the given card library.
// The journal may be nil to disable event journaling.
func NewRegistry(library *cards.Library, j *journal.Journal, logger *logrus.Logger) *Registry {
	return &Registry{
		library:   library,
		journal:   j,
		logger:    logger,
		all:       make(map[string]*Room),
		available: make(map[string]*Room),
	}
}

// GetOrCreate returns the room with the given id, creating a non-private
// room under that id if none exists. With an empty id it picks uniformly at
// random among the available rooms, creating a fresh one when there are
// none.
func (reg *Registry) GetOrCreate(id string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if id != "" {
		if room, ok := reg.all[id]; ok {
			return room
		}
		return reg.createLocked(id)
	}

	if len(reg.available) > 0 {
		pick := rand.Intn(len(reg.available))
		for _, room := range reg.available {
			if pick == 0 {
				return room
			}
			pick--
		}
	}
	return reg.createLocked(uuid.NewString())
}

// Get returns the room with the given id, if it exists.
func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.all[id]
	return room, ok
}

// RoomCount returns the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.all)
}

// AvailableCount returns the number of rooms open to random discovery.
func (reg *Registry) AvailableCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.available)
}

func (reg *Registry) createLocked(id string) *Room {
	room := NewRoom(id, false, reg.library, reg.logger)
	room.journal = reg.journal
	room.onChange = reg.update
	reg.all[id] = room
	reg.available[id] = room
	reg.logger.Infof("registry: created room %s", id)
	return room
}

// update recomputes a room's index membership after a membership or
// accessibility change: empty rooms are destroyed, full or private rooms
// leave the available index, and open rooms rejoin it.
func (reg *Registry) update(room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := room.ID()
	switch {
	case room.PlayerCount() == 0:
		delete(reg.all, id)
		delete(reg.available, id)
		reg.logger.Infof("registry: destroyed empty room %s", id)
	case !room.Private() && !room.IsFull():
		reg.available[id] = room
	default:
		delete(reg.available, id)
	}
}
