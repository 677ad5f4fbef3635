package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("freelancer-analytics-test", reg)
	require.NoError(t, err)
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordQuery(ctx, "average", "answered")
	obs.RecordQueryDuration(ctx, 120*time.Millisecond, "answered")
	obs.RecordCacheLookup(ctx, "miss")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "queries_processed_total")
	assert.Contains(t, names, "queries_duration_milliseconds")
	assert.Contains(t, names, "cache_lookups_total")
}

func TestObservability_NoopIsSafe(t *testing.T) {
	ctx := context.Background()

	for _, obs := range []*Observability{nil, Noop()} {
		assert.NotPanics(t, func() {
			obs.RecordQuery(ctx, "unknown", "failed")
			obs.RecordQueryDuration(ctx, time.Second, "failed")
			obs.RecordCacheLookup(ctx, "hit")
			obs.Shutdown()
		})
	}
}
