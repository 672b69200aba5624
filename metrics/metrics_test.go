package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilRegistry(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	// Every observation is a no-op.
	m.ObserveLookup("exact")
	m.ObserveMatch("exact", 2)
	m.ObserveSkip()
	m.ObserveDocument(time.Millisecond, nil)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveLookup("exact")
	m.ObserveLookup("exact")
	m.ObserveLookup("norms")
	m.ObserveMatch("exact", 3)
	m.ObserveSkip()
	m.ObserveDocument(2*time.Millisecond, nil)
	m.ObserveDocument(time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("norms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matches.WithLabelValues("exact")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.concepts.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedCandidates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues(StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.documentDuration))
}
