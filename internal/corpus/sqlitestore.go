//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/e-gun/ScreeningGoServer/internal/tags"
	_ "modernc.org/sqlite"
)

const (
	SQLITEDRIVER = "sqlite"
	DOCSCHEMA    = `CREATE TABLE IF NOT EXISTS documents (
		corpus   TEXT NOT NULL,
		line     INTEGER NOT NULL,
		raw      TEXT NOT NULL DEFAULT '',
		abstract TEXT NOT NULL DEFAULT '',
		title    TEXT NOT NULL DEFAULT '',
		journal  TEXT NOT NULL DEFAULT '',
		pmid     TEXT NOT NULL DEFAULT '',
		pmc      TEXT NOT NULL DEFAULT '',
		label    TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '',
		mesh     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (corpus, line)
	)`
	DOCCOLUMNS = `line, raw, abstract, title, journal, pmid, pmc, label, keywords, mesh`
)

// SQLiteStore - corpora kept in one SQLite file; also the target of "ingest"
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite - open (or create) the store at fp
func OpenSQLite(ctx context.Context, fp string) (*SQLiteStore, error) {
	db, err := sql.Open(SQLITEDRIVER, fp)
	if err != nil {
		return nil, err
	}
	// one writer at a time or "database is locked"
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, DOCSCHEMA); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Ingest - replace the corpus called name with rr inside one transaction
func (s *SQLiteStore) Ingest(ctx context.Context, name string, rr []Record) (err error) {
	const (
		DEL = `DELETE FROM documents WHERE corpus = ?`
		INS = `INSERT INTO documents (corpus, ` + DOCCOLUMNS + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	)

	if err = ValidName(name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, DEL, name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, INS)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rr {
		_, err = stmt.ExecContext(ctx, name, r.Tag.Line, r.Raw, r.Abstract, r.Title, r.Journal, r.PMID, r.PMC, r.Label,
			strings.Join(r.Keywords, tags.SEP), strings.Join(r.Mesh, tags.SEP))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, r.Tag.Line, err)
		}
	}
	return tx.Commit()
}

// Names - corpora in the store, sorted
func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	const (
		Q = `SELECT DISTINCT corpus FROM documents ORDER BY corpus`
	)
	rows, err := s.db.QueryContext(ctx, Q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nn []string
	for rows.Next() {
		var n string
		if err = rows.Scan(&n); err != nil {
			return nil, err
		}
		nn = append(nn, n)
	}
	return nn, rows.Err()
}

// Iterate - the records of a corpus ordered by line
func (s *SQLiteStore) Iterate(ctx context.Context, name string) ([]Record, error) {
	const (
		Q = `SELECT ` + DOCCOLUMNS + ` FROM documents WHERE corpus = ? ORDER BY line`
	)
	rows, err := s.db.QueryContext(ctx, Q, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rr []Record
	for rows.Next() {
		var d dbrecord
		if err = rows.Scan(&d.Line, &d.Raw, &d.Abstract, &d.Title, &d.Journal, &d.PMID, &d.PMC, &d.Label,
			&d.Keywords, &d.Mesh); err != nil {
			return nil, err
		}
		rr = append(rr, d.record(name))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(rr) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoCorpus, name)
	}
	return rr, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// dbrecord - a row of the documents table; shared by the SQLite and PostgreSQL providers
type dbrecord struct {
	Line     int
	Raw      string
	Abstract string
	Title    string
	Journal  string
	PMID     string
	PMC      string
	Label    string
	Keywords string
	Mesh     string
}

func (d dbrecord) record(name string) Record {
	return Record{
		Tag:      tags.Tag{Corpus: name, Line: d.Line},
		Raw:      d.Raw,
		Abstract: d.Abstract,
		Title:    d.Title,
		Journal:  d.Journal,
		PMID:     d.PMID,
		PMC:      d.PMC,
		Label:    d.Label,
		Keywords: splitplus(d.Keywords),
		Mesh:     splitplus(d.Mesh),
	}
}
