package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"huddle/internal/domain"
)

// Registry maps live session ids to their transport handles. It is the
// only way the coordinator reaches a client; rooms store plain ids.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.SessionID]SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.SessionID]SignalConnection)}
}

func (r *Registry) Bind(sid domain.SessionID, conn SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = conn
	log.Info().Str("module", "core.registry").Str("sid", string(sid)).Msg("bound session")
}

func (r *Registry) Unbind(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sid)
	log.Info().Str("module", "core.registry").Str("sid", string(sid)).Msg("unbound session")
}

func (r *Registry) Get(sid domain.SessionID) (SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[sid]
	return conn, ok
}

// Kick force-closes a session's transport. The binding stays until the
// adapter's read loop exits and reports the disconnect.
func (r *Registry) Kick(sid domain.SessionID) {
	r.mu.RLock()
	conn, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		return
	}
	conn.Close()
	log.Info().Str("module", "core.registry").Str("sid", string(sid)).Msg("kicked session")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
