package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"pedigree/internal/errors"
	"pedigree/internal/extractor"

	_ "github.com/mattn/go-sqlite3"
)

type linkKind string

const (
	linkSpouse linkKind = "spouse"
	linkChild  linkKind = "child"
	linkParent linkKind = "parent"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "open %s", path)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to init schema")
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS persons (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			name TEXT,
			sex TEXT,
			birth_date TEXT,
			details JSON
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			from_id TEXT,
			to_id TEXT,
			kind TEXT,
			ordinal INTEGER,
			PRIMARY KEY (from_id, to_id, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_persons_seq ON persons(seq);`,
		`CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_id, kind, ordinal);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SavePersons replaces every stored person and link in one transaction.
func (s *SQLiteStore) SavePersons(ctx context.Context, people []*extractor.Person) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot semantics: rows absent from people must not survive.
	for _, q := range []string{`DELETE FROM links`, `DELETE FROM persons`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "clear snapshot")
		}
	}

	personStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO persons (id, seq, name, sex, birth_date, details)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			sex=excluded.sex,
			birth_date=excluded.birth_date,
			details=excluded.details
	`)
	if err != nil {
		return err
	}
	defer personStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO links (from_id, to_id, kind, ordinal)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer linkStmt.Close()

	for seq, p := range people {
		details, err := json.Marshal(p)
		if err != nil {
			return errors.Wrapf(err, "encode person %s", p.ID)
		}
		if _, err := personStmt.ExecContext(ctx, p.ID, seq, p.Name, p.Sex, p.BirthDate, details); err != nil {
			return errors.Wrapf(err, "save person %s", p.ID)
		}

		for kind, ids := range map[linkKind][]string{
			linkSpouse: p.SpouseIDs,
			linkChild:  p.ChildIDs,
			linkParent: p.ParentIDs,
		} {
			for i, to := range ids {
				if _, err := linkStmt.ExecContext(ctx, p.ID, to, string(kind), i); err != nil {
					return errors.Wrapf(err, "save %s link %s->%s", kind, p.ID, to)
				}
			}
		}
	}

	return tx.Commit()
}

// LoadPerson restores one person. The id lists come from the links table.
func (s *SQLiteStore) LoadPerson(ctx context.Context, id string) (*extractor.Person, error) {
	var details []byte
	err := s.db.QueryRowContext(ctx, `SELECT details FROM persons WHERE id = ?`, id).Scan(&details)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "person %s", id)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load person %s", id), errors.ErrLinkUnresolved)
	}

	var p extractor.Person
	if err := json.Unmarshal(details, &p); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode person %s", id), errors.ErrLinkUnresolved)
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}

	links, err := s.links(ctx, id)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "load links of %s", id), errors.ErrLinkUnresolved)
	}
	p.SpouseIDs = links[linkSpouse]
	p.ChildIDs = links[linkChild]
	p.ParentIDs = links[linkParent]

	return &p, nil
}

func (s *SQLiteStore) links(ctx context.Context, id string) (map[linkKind][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_id, kind FROM links WHERE from_id = ? ORDER BY kind, ordinal
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[linkKind][]string{
		linkSpouse: {},
		linkChild:  {},
		linkParent: {},
	}
	for rows.Next() {
		var to, kind string
		if err := rows.Scan(&to, &kind); err != nil {
			return nil, err
		}
		out[linkKind(kind)] = append(out[linkKind(kind)], to)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM persons ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored people.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n)
	return n, err
}

// LoadAll returns every stored person in saved order.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*extractor.Person, error) {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	people := make([]*extractor.Person, 0, len(ids))
	for _, id := range ids {
		p, err := s.LoadPerson(ctx, id)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}
