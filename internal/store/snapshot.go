package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/pipeline"
)

// ErrNotFound is returned when no snapshot matches a reference.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot describes one saved revision of a configuration.
type Snapshot struct {
	ID         string                `json:"id"`
	Hash       string                `json:"hash"`
	Facility   instrument.Facility   `json:"facility"`
	Instrument instrument.Instrument `json:"instrument"`
	Label      string                `json:"label"`
	Seq        int64                 `json:"seq"`
}

// IntegrityError reports a stored body that no longer hashes to its key.
type IntegrityError struct {
	Hash   string
	Actual string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("snapshot %s: stored body hashes to %s", e.Hash, e.Actual)
}

// Save stores cfg under label. Saving the same content under the same
// label again returns the existing revision.
func (s *Store) Save(ctx context.Context, cfg *pipeline.Config, label string) (Snapshot, error) {
	hash, err := cfg.Hash()
	if err != nil {
		return Snapshot{}, fmt.Errorf("save: %w", err)
	}
	body, err := cfg.MarshalJSON()
	if err != nil {
		return Snapshot{}, fmt.Errorf("save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO configs (hash, facility, instrument, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, string(cfg.Facility()), string(cfg.Instrument()), string(body)); err != nil {
		return Snapshot{}, fmt.Errorf("save config: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (id, hash, label, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions))
		ON CONFLICT(hash, label) DO NOTHING
	`, s.newID(), hash, label)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save revision: %w", err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return Snapshot{}, fmt.Errorf("save revision: %w", err)
	}

	snap, err := scanSnapshot(tx.QueryRowContext(ctx, selectSnapshot+`
		WHERE r.hash = ? AND r.label = ?
	`, hash, label))
	if err != nil {
		return Snapshot{}, fmt.Errorf("save: read back: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("save: commit: %w", err)
	}

	s.logger.Info("snapshot saved",
		"id", snap.ID,
		"hash", snap.Hash,
		"instrument", snap.Instrument,
		"created", created > 0,
	)
	return snap, nil
}

// Load returns the configuration referenced by ref, which is either a
// content hash or a revision id.
func (s *Store) Load(ctx context.Context, ref string) (*pipeline.Config, Snapshot, error) {
	var body string
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshot+`
		WHERE r.id = ? OR r.hash = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
		LIMIT 1
	`, ref, ref), &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Snapshot{}, fmt.Errorf("load %q: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("load %q: %w", ref, err)
	}

	cfg, err := pipeline.Unmarshal([]byte(body))
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("load %q: %w", ref, err)
	}
	actual, err := cfg.Hash()
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("load %q: %w", ref, err)
	}
	if actual != snap.Hash {
		return nil, Snapshot{}, &IntegrityError{Hash: snap.Hash, Actual: actual}
	}
	return cfg, snap, nil
}

// List returns every revision, oldest first. A non-empty inst restricts the
// result to that instrument. Returns an empty slice (not nil) when there
// are none.
func (s *Store) List(ctx context.Context, inst instrument.Instrument) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectSnapshot+`
		WHERE ? = '' OR c.instrument = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, string(inst), string(inst))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

const selectSnapshot = `
	SELECT r.id, r.hash, c.facility, c.instrument, r.label, r.seq, c.body
	FROM revisions r
	JOIN configs c ON c.hash = r.hash
`

type scanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads one row of selectSnapshot. The body is stored into
// body[0] when given.
func scanSnapshot(row scanner, body ...*string) (Snapshot, error) {
	var (
		snap     Snapshot
		fac, ins string
		raw      string
	)
	if err := row.Scan(&snap.ID, &snap.Hash, &fac, &ins, &snap.Label, &snap.Seq, &raw); err != nil {
		return Snapshot{}, err
	}
	snap.Facility = instrument.Facility(fac)
	snap.Instrument = instrument.Instrument(ins)
	if len(body) > 0 && body[0] != nil {
		*body[0] = raw
	}
	return snap, nil
}
