package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

type countingLister struct {
	calls      int
	catchments []domain.Catchment
	err        error
}

func (l *countingLister) ListCatchments(_ context.Context) ([]domain.Catchment, error) {
	l.calls++
	return l.catchments, l.err
}

func TestCatchmentCache_HitSkipsSource(t *testing.T) {
	src := &countingLister{catchments: []domain.Catchment{{ID: "a"}}}
	c := NewCatchmentCache(src, time.Minute)

	for range 3 {
		got, err := c.ListCatchments(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, src.calls, "only the first read reaches the source")
}

func TestCatchmentCache_InvalidateForcesRefresh(t *testing.T) {
	src := &countingLister{catchments: []domain.Catchment{{ID: "a"}}}
	c := NewCatchmentCache(src, time.Minute)

	_, err := c.ListCatchments(context.Background())
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.ListCatchments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCatchmentCache_ErrorNotCached(t *testing.T) {
	src := &countingLister{err: errors.New("store down")}
	c := NewCatchmentCache(src, time.Minute)

	_, err := c.ListCatchments(context.Background())
	require.Error(t, err)

	src.err = nil
	src.catchments = []domain.Catchment{{ID: "a"}}

	got, err := c.ListCatchments(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, src.calls)
}
