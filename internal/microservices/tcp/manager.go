package tcp

import (
	"log/slog"
	"net"
	"sync"
)

// ConnectionManager tracks the inbound connections currently being read so
// Stop can unblock them.
type ConnectionManager struct {
	conns  map[string]net.Conn // key: connection ID
	mu     sync.RWMutex
	logger *slog.Logger
}

// constructor for ConnectionManager
func NewConnectionManager(logger *slog.Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionManager{
		conns:  make(map[string]net.Conn),
		logger: logger,
	}
}

func (m *ConnectionManager) AddConnection(id string, conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[id] = conn
	m.logger.Debug("connection_added", "conn_id", id)
}

func (m *ConnectionManager) RemoveConnection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
	m.logger.Debug("connection_removed", "conn_id", id)
}

// Count returns the number of connections still being read.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

func (m *ConnectionManager) CloseAllConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.conns {
		conn.Close()
		m.logger.Debug("connection_closed", "conn_id", id)
	}
	// reset the map so closed conns can be collected
	m.conns = make(map[string]net.Conn)
}
