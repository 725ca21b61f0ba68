package visibility

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sightline-data/sightline/internal/geom"
	"github.com/sightline-data/sightline/internal/scene"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := OpenResultStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func computedResult() *Result {
	sensor := scene.Sensor{
		ID:            "cam-store",
		Pos:           geom.Point{X: 100, Y: 100},
		FOVDeg:        90,
		MaxDistance:   300,
		ClearDistance: 150,
	}
	r := Compute(sensor, nil, scene.Bounds{Width: 800, Height: 600}, Params{})
	return &r
}

func TestResultStoreInsertAndLatest(t *testing.T) {
	store := openTestStore(t)
	r := computedResult()

	id, err := store.InsertResult(r, time.Unix(100, 0))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.LatestResult("cam-store")
	require.NoError(t, err)
	assert.Equal(t, id, got.ResultID)
	assert.Equal(t, "cam-store", got.SensorID)
	assert.Equal(t, int64(100e9), got.ComputedAtNs)
	assert.Equal(t, len(r.Vertices), got.VertexCount)
	require.Len(t, got.Vertices, len(r.Vertices))
	assert.InDelta(t, r.Vertices[0].Distance, got.Vertices[0].Distance, 1e-9)
}

func TestResultStoreLatestPicksNewest(t *testing.T) {
	store := openTestStore(t)
	r := computedResult()

	_, err := store.InsertResult(r, time.Unix(100, 0))
	require.NoError(t, err)
	newest, err := store.InsertResult(r, time.Unix(200, 0))
	require.NoError(t, err)

	got, err := store.LatestResult("cam-store")
	require.NoError(t, err)
	assert.Equal(t, newest, got.ResultID)

	list, err := store.ListResults("cam-store", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].ComputedAtNs > list[1].ComputedAtNs, "newest first")
}

func TestResultStoreUnknownSensor(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LatestResult("nobody")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
