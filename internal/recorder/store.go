package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

// Sample is one point of a recorded trajectory.
type Sample struct {
	T      float64 `msgpack:"t" json:"t"`
	X      float64 `msgpack:"x" json:"x"`
	Y      float64 `msgpack:"y" json:"y"`
	Z      float64 `msgpack:"z" json:"z"`
	VX     float64 `msgpack:"vx" json:"vx"`
	VY     float64 `msgpack:"vy" json:"vy"`
	VZ     float64 `msgpack:"vz" json:"vz"`
	State  string  `msgpack:"s" json:"state,omitempty"`
	Homing float64 `msgpack:"h" json:"homing,omitempty"`
}

// Flight is a full missile trajectory from launch to removal.
type Flight struct {
	ID         string    `json:"id"`
	Room       string    `json:"room"`
	Class      string    `json:"class"`
	Mode       string    `json:"mode"`
	LaunchedAt float64   `json:"launched_at"`
	EndedAt    float64   `json:"ended_at"`
	Outcome    string    `json:"outcome"`
	Samples    []Sample  `json:"samples"`
	CreatedAt  time.Time `json:"created_at"`
}

// FlightSummary is a flight row without its samples.
type FlightSummary struct {
	ID          string
	Room        string
	Class       string
	Mode        string
	LaunchedAt  float64
	EndedAt     float64
	Outcome     string
	SampleCount int
	CreatedAt   time.Time
}

// Store persists flights in SQLite.
type Store struct {
	conn *sql.DB
}

// OpenStore opens (or creates) the flight database
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS flights (
		id TEXT PRIMARY KEY,
		room TEXT NOT NULL DEFAULT '',
		class TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL DEFAULT '',
		launched_at REAL NOT NULL DEFAULT 0,
		ended_at REAL NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT '',
		sample_count INTEGER NOT NULL DEFAULT 0,
		samples BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_flights_room ON flights(room);
	`
	_, err := s.conn.Exec(schema)
	if err != nil {
		log.Printf("flight store migration error: %v", err)
	}
	return err
}

// SaveFlight inserts f, assigning an id when it has none.
func (s *Store) SaveFlight(f *Flight) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	blob, err := msgpack.Marshal(f.Samples)
	if err != nil {
		return fmt.Errorf("encode samples for flight %s: %w", f.ID, err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO flights (id, room, class, mode, launched_at, ended_at, outcome, sample_count, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Room, f.Class, f.Mode, f.LaunchedAt, f.EndedAt, f.Outcome, len(f.Samples), blob,
	)
	if err != nil {
		return fmt.Errorf("insert flight %s: %w", f.ID, err)
	}
	return nil
}

// ListFlights returns the newest flights first. A non-empty room filters.
func (s *Store) ListFlights(room string, limit int) ([]FlightSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, room, class, mode, launched_at, ended_at, outcome, sample_count, created_at
		FROM flights`
	args := []any{}
	if room != "" {
		query += " WHERE room = ?"
		args = append(args, room)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FlightSummary
	for rows.Next() {
		var f FlightSummary
		if err := rows.Scan(&f.ID, &f.Room, &f.Class, &f.Mode, &f.LaunchedAt, &f.EndedAt, &f.Outcome, &f.SampleCount, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// LoadFlight returns the flight with its samples, or nil when unknown.
func (s *Store) LoadFlight(id string) (*Flight, error) {
	row := s.conn.QueryRow(
		`SELECT id, room, class, mode, launched_at, ended_at, outcome, samples, created_at
		FROM flights WHERE id = ?`,
		id,
	)
	f := &Flight{}
	var blob []byte
	err := row.Scan(&f.ID, &f.Room, &f.Class, &f.Mode, &f.LaunchedAt, &f.EndedAt, &f.Outcome, &blob, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		if err := msgpack.Unmarshal(blob, &f.Samples); err != nil {
			return nil, fmt.Errorf("decode samples for flight %s: %w", id, err)
		}
	}
	return f, nil
}
