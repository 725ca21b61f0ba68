package visibility

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StoredResult is one recorded visibility computation. The vertex sequence
// is stored as JSON since it is derived data read back only for analysis,
// never queried field-by-field.
type StoredResult struct {
	ResultID     string   `json:"result_id"`
	SensorID     string   `json:"sensor_id"`
	ComputedAtNs int64    `json:"computed_at_ns"`
	VertexCount  int      `json:"vertex_count"`
	MaxDistance  float64  `json:"max_distance"`
	Vertices     []Vertex `json:"vertices"`
}

// ResultStore records computed visibility results for offline analysis and
// regression comparison. It stores derived data only; scenes themselves are
// not persisted here.
type ResultStore struct {
	db *sql.DB
}

const resultSchema = `
CREATE TABLE IF NOT EXISTS visibility_results (
	result_id      TEXT PRIMARY KEY,
	sensor_id      TEXT NOT NULL,
	computed_at_ns INTEGER NOT NULL,
	vertex_count   INTEGER NOT NULL,
	max_distance   REAL NOT NULL,
	vertices_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visibility_results_sensor
	ON visibility_results(sensor_id, computed_at_ns DESC);
`

// OpenResultStore opens (or creates) a sqlite result store at path. Use
// ":memory:" for tests.
func OpenResultStore(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	store := &ResultStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewResultStore wraps an existing database handle, creating the schema if
// needed.
func NewResultStore(db *sql.DB) (*ResultStore, error) {
	store := &ResultStore{db: db}
	if err := store.init(); err != nil {
		return nil, err
	}
	return store, nil
}

func (st *ResultStore) init() error {
	if _, err := st.db.Exec(resultSchema); err != nil {
		return fmt.Errorf("create visibility_results schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (st *ResultStore) Close() error { return st.db.Close() }

// InsertResult records a computed result with a fresh result id. A zero
// computedAt defaults to now.
func (st *ResultStore) InsertResult(r *Result, computedAt time.Time) (string, error) {
	if computedAt.IsZero() {
		computedAt = time.Now()
	}
	verticesJSON, err := json.Marshal(r.Vertices)
	if err != nil {
		return "", fmt.Errorf("marshal vertices: %w", err)
	}

	resultID := uuid.New().String()
	_, err = st.db.Exec(`
		INSERT INTO visibility_results (
			result_id, sensor_id, computed_at_ns, vertex_count, max_distance, vertices_json
		) VALUES (?, ?, ?, ?, ?, ?)`,
		resultID,
		r.SensorID,
		computedAt.UnixNano(),
		len(r.Vertices),
		r.MaxDistance,
		string(verticesJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return resultID, nil
}

// LatestResult returns the most recently recorded result for a sensor, or
// sql.ErrNoRows when the sensor has none.
func (st *ResultStore) LatestResult(sensorID string) (*StoredResult, error) {
	row := st.db.QueryRow(`
		SELECT result_id, sensor_id, computed_at_ns, vertex_count, max_distance, vertices_json
		FROM visibility_results
		WHERE sensor_id = ?
		ORDER BY computed_at_ns DESC
		LIMIT 1`, sensorID)
	return scanStoredResult(row)
}

// ListResults returns up to limit recorded results for a sensor, newest
// first.
func (st *ResultStore) ListResults(sensorID string, limit int) ([]*StoredResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := st.db.Query(`
		SELECT result_id, sensor_id, computed_at_ns, vertex_count, max_distance, vertices_json
		FROM visibility_results
		WHERE sensor_id = ?
		ORDER BY computed_at_ns DESC
		LIMIT ?`, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*StoredResult
	for rows.Next() {
		r, err := scanStoredResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredResult(row rowScanner) (*StoredResult, error) {
	var r StoredResult
	var verticesJSON string
	err := row.Scan(
		&r.ResultID,
		&r.SensorID,
		&r.ComputedAtNs,
		&r.VertexCount,
		&r.MaxDistance,
		&verticesJSON,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(verticesJSON), &r.Vertices); err != nil {
		return nil, fmt.Errorf("unmarshal vertices: %w", err)
	}
	return &r, nil
}
