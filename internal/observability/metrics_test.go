package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets/:id", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/tickets/:id", "GET", 200, 4*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 401, time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHORIZED")
	m.RecordEvent("ticket_created")
	m.RecordEvent("ticket_created")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, "GET /tickets/:id|200", snap.Requests[0].Key)
	assert.Equal(t, "POST /auth/login|401", snap.Requests[1].Key)

	byKey := make(map[string]RouteStat, len(snap.Requests))
	for _, r := range snap.Requests {
		byKey[r.Key] = r
	}
	get := byKey["GET /tickets/:id|200"]
	assert.Equal(t, int64(2), get.Count)
	assert.InDelta(t, 3.0, get.AvgLatencyMS, 0.001)
	assert.Equal(t, int64(1), byKey["POST /auth/login|401"].Count)

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "POST /auth/login|UNAUTHORIZED", snap.Errors[0].Key)
	assert.Equal(t, int64(2), snap.Events["ticket_created"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "INTERNAL")
	m.RecordEvent("ticket_created")
	assert.Empty(t, m.Snapshot().Requests)
}
