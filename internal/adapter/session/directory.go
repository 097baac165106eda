// Package session holds the in-memory session directory and the
// log-backed notifier used by the server wiring.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Directory tracks live sessions and remembers the display names of
// identities that have disconnected, so name lookups keep working for
// recently seen players.
type Directory struct {
	mu     sync.RWMutex
	online map[uuid.UUID]string
	seen   map[string]uuid.UUID // lowercased name -> identity
	log    zerolog.Logger
}

func NewDirectory(log zerolog.Logger) *Directory {
	return &Directory{
		online: make(map[uuid.UUID]string),
		seen:   make(map[string]uuid.UUID),
		log:    log.With().Str("component", "session_directory").Logger(),
	}
}

// Connect registers a live session.
func (d *Directory) Connect(id uuid.UUID, name string) {
	d.mu.Lock()
	d.online[id] = name
	d.seen[strings.ToLower(name)] = id
	d.mu.Unlock()
	d.log.Debug().Str("id", id.String()).Str("name", name).Msg("Session connected")
}

// Disconnect ends a live session. The name stays resolvable.
func (d *Directory) Disconnect(id uuid.UUID) {
	d.mu.Lock()
	delete(d.online, id)
	d.mu.Unlock()
	d.log.Debug().Str("id", id.String()).Msg("Session disconnected")
}

func (d *Directory) NameByID(id uuid.UUID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.online[id]
	return name, ok
}

func (d *Directory) IDByName(name string) (uuid.UUID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.seen[strings.ToLower(name)]
	return id, ok
}

func (d *Directory) Online() []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(d.online))
	for id := range d.online {
		ids = append(ids, id)
	}
	return ids
}

// LogNotifier writes user-facing messages to the log. A chat transport
// can replace it without touching the services.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) Notify(id uuid.UUID, message string) {
	n.log.Info().Str("account_id", id.String()).Str("message", message).Msg("Notification")
}
