package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindgraph-backend/application/ports"
	"mindgraph-backend/application/reconciler"
	"mindgraph-backend/domain/config"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/services"
)

// Allocator strategy names accepted by the manager
const (
	AllocatorGrid   = "grid"
	AllocatorSpiral = "spiral"
)

// Manager is the session registry. All per-session state (ID assignment,
// graphs, transcripts) lives inside the sessions it creates, so concurrent
// sessions never collide on shared counters.
type Manager struct {
	cfg       *config.DomainConfig
	oracle    ports.DeltaOracle
	allocator aggregates.PositionAllocator
	filter    *services.DuplicateFilter
	layout    *services.TreeLayoutEngine
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. Unknown allocator strategies fall
// back to spiral packing.
func NewManager(cfg *config.DomainConfig, oracle ports.DeltaOracle, allocatorStrategy string, logger *zap.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var allocator aggregates.PositionAllocator
	switch allocatorStrategy {
	case AllocatorGrid:
		allocator = services.NewGridAllocator(cfg)
	default:
		allocator = services.NewSpiralAllocator(cfg)
	}

	hierarchy := services.NewHierarchyCalculator(cfg)

	return &Manager{
		cfg:       cfg,
		oracle:    oracle,
		allocator: allocator,
		filter:    services.NewDuplicateFilter(cfg),
		layout:    services.NewTreeLayoutEngine(cfg, hierarchy),
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a new session with an empty graph
func (m *Manager) Create() *Session {
	graph := aggregates.NewGraph(m.allocator)
	s := &Session{
		id:         uuid.New().String(),
		graph:      graph,
		reconciler: reconciler.NewReconciler(graph, m.filter, m.layout, m.cfg, m.logger),
		oracle:     m.oracle,
		logger:     m.logger,
		createdAt:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("Session created", zap.String("sessionID", s.id))
	return s
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[id]
	return s, exists
}

// Close removes a session and drops its graph. Returns false when the
// session does not exist.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return false
	}
	delete(m.sessions, id)
	m.logger.Info("Session closed", zap.String("sessionID", id))
	return true
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
