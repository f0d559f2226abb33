package srv

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics holds process-wide counters exposed on /metrics.
type Metrics struct {
	CubeSaves      int64
	PropsSpawned   int64
	PropsDeleted   int64
	BroadcastsSent int64
	WSConnected    int64 // gauge: currently open connections
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncCubeSave()           { atomic.AddInt64(&m.CubeSaves, 1) }
func (m *Metrics) IncPropSpawned()        { atomic.AddInt64(&m.PropsSpawned, 1) }
func (m *Metrics) IncPropDeleted()        { atomic.AddInt64(&m.PropsDeleted, 1) }
func (m *Metrics) AddBroadcasts(n int64)  { atomic.AddInt64(&m.BroadcastsSent, n) }
func (m *Metrics) IncWSConnected()        { atomic.AddInt64(&m.WSConnected, 1) }
func (m *Metrics) IncWSDisconnected()     { atomic.AddInt64(&m.WSConnected, -1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"cube_saves":      atomic.LoadInt64(&m.CubeSaves),
		"props_spawned":   atomic.LoadInt64(&m.PropsSpawned),
		"props_deleted":   atomic.LoadInt64(&m.PropsDeleted),
		"broadcasts_sent": atomic.LoadInt64(&m.BroadcastsSent),
		"ws_connected":    atomic.LoadInt64(&m.WSConnected),
	}
}

func (m *Metrics) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
