package realtime

import (
	"sort"
	"sync"
)

// Identity is the verified principal bound to a connection at handshake.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
}

// Sink accepts encoded frames for one connection. Send must not block; it
// reports false when the frame could not be queued.
type Sink interface {
	Send(frame []byte) bool
}

// Peer is one registered connection.
type Peer struct {
	ConnID   string
	Identity Identity

	sink Sink

	mu     sync.RWMutex
	userID string
}

func NewPeer(connID string, identity Identity, sink Sink) *Peer {
	return &Peer{ConnID: connID, Identity: identity, sink: sink}
}

// Send queues frame on the peer's outbox without blocking.
func (p *Peer) Send(frame []byte) bool {
	if p.sink == nil {
		return false
	}
	return p.sink.Send(frame)
}

// UserID is the internal record id of the identity, known once the session
// has loaded the user.
func (p *Peer) UserID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userID
}

func (p *Peer) setUserID(id string) {
	p.mu.Lock()
	p.userID = id
	p.mu.Unlock()
}

type registration struct {
	peer  *Peer
	rooms map[string]struct{}
}

// Registry maps live connections to identities and rooms. Both membership
// directions are changed under one lock.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*registration
	rooms    map[string]map[string]*Peer
	subjects map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]*registration),
		rooms:    make(map[string]map[string]*Peer),
		subjects: make(map[string]int),
	}
}

// Register binds a new connection and returns the identity's connection count
// including it.
func (r *Registry) Register(peer *Peer) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[peer.ConnID]; exists {
		return r.subjects[peer.Identity.SubjectID], ErrAlreadyRegistered
	}
	r.conns[peer.ConnID] = &registration{peer: peer, rooms: make(map[string]struct{})}
	r.subjects[peer.Identity.SubjectID]++
	return r.subjects[peer.Identity.SubjectID], nil
}

// JoinRoom adds roomID to the connection's room set. Room existence and
// privilege are checked by the caller.
func (r *Registry) JoinRoom(connID, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.conns[connID]
	if !ok {
		return ErrNotRegistered
	}
	reg.rooms[roomID] = struct{}{}
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*Peer)
		r.rooms[roomID] = members
	}
	members[connID] = reg.peer
	return nil
}

// LeaveRoom is idempotent.
func (r *Registry) LeaveRoom(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.conns[connID]; ok {
		delete(reg.rooms, roomID)
	}
	r.removeMember(roomID, connID)
}

// Unregister removes the connection and all its memberships. remaining is the
// identity's connection count afterwards; ok is false for an unknown id.
func (r *Registry) Unregister(connID string) (remaining int, peer *Peer, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.conns[connID]
	if !ok {
		return 0, nil, false
	}
	for roomID := range reg.rooms {
		r.removeMember(roomID, connID)
	}
	delete(r.conns, connID)

	subject := reg.peer.Identity.SubjectID
	r.subjects[subject]--
	remaining = r.subjects[subject]
	if remaining <= 0 {
		delete(r.subjects, subject)
		remaining = 0
	}
	return remaining, reg.peer, true
}

func (r *Registry) removeMember(roomID, connID string) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// MembersOf returns the sorted connection ids subscribed to roomID.
func (r *Registry) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		ids = append(ids, connID)
	}
	sort.Strings(ids)
	return ids
}

// Peers returns the peers subscribed to roomID.
func (r *Registry) Peers(roomID string) []*Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]*Peer, 0, len(r.rooms[roomID]))
	for _, p := range r.rooms[roomID] {
		peers = append(peers, p)
	}
	return peers
}

// AllPeers returns every registered peer.
func (r *Registry) AllPeers() []*Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]*Peer, 0, len(r.conns))
	for _, reg := range r.conns {
		peers = append(peers, reg.peer)
	}
	return peers
}

// RoomsOf returns the sorted room set of a connection.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.conns[connID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(reg.rooms))
	for roomID := range reg.rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms
}

// ConnectionCount returns how many live connections the subject holds.
func (r *Registry) ConnectionCount(subjectID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subjects[subjectID]
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
