package sched

import "sync"

// Role identifies the purpose of a managed pool
type Role int

const (
	RoleGeneral Role = iota
	RoleRendering
	RoleLoading
	RoleInput
)

// String returns a human-readable role name
func (r Role) String() string {
	switch r {
	case RoleGeneral:
		return "general"
	case RoleRendering:
		return "rendering"
	case RoleLoading:
		return "loading"
	case RoleInput:
		return "input"
	default:
		return "unknown"
	}
}

// Config holds the worker count for each pool role. Zero values fall back
// to hardware concurrency, except Input which defaults to one worker.
type Config struct {
	General   int
	Rendering int
	Loading   int
	Input     int
}

// DefaultConfig returns the default per-role sizing
func DefaultConfig() Config {
	return Config{Input: 1}
}

// Manager owns one worker pool per logical role. It is constructed
// explicitly and passed to the subsystems that need it; there is no
// package-level instance. Safe for concurrent use; the registry lock is
// never held while tasks execute.
type Manager struct {
	mu    sync.Mutex
	pools map[Role]*Pool
}

// NewManager creates a manager with no pools; pools are created lazily by
// Pool or explicitly by Initialize.
func NewManager() *Manager {
	return &Manager{pools: make(map[Role]*Pool)}
}

// Pool returns the pool for the given role, creating one lazily with
// default sizing if none exists.
func (m *Manager) Pool(role Role) *Pool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.pools[role]
	if !ok {
		pool = NewPool(m.defaultWorkers(role))
		m.pools[role] = pool
	}
	return pool
}

func (m *Manager) defaultWorkers(role Role) int {
	if role == RoleInput {
		return 1
	}
	return 0 // Hardware concurrency
}

// Initialize (re)creates all four role pools with explicit sizes,
// replacing any existing ones. Tasks still queued on replaced pools are
// abandoned per the pool shutdown contract.
func (m *Manager) Initialize(cfg Config) {
	m.mu.Lock()
	old := m.pools
	m.pools = map[Role]*Pool{
		RoleGeneral:   NewPool(cfg.General),
		RoleRendering: NewPool(cfg.Rendering),
		RoleLoading:   NewPool(cfg.Loading),
		RoleInput:     NewPool(max(cfg.Input, 1)),
	}
	m.mu.Unlock()

	for _, pool := range old {
		pool.Close()
	}
}

// Shutdown closes every pool. Call once, after all dependent subsystems
// have stopped submitting.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	pools := m.pools
	m.pools = make(map[Role]*Pool)
	m.mu.Unlock()

	for _, pool := range pools {
		pool.Close()
	}
}
