//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"context"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"strings"
)

// PGProvider - corpora in the "documents" table of a PostgreSQL database
type PGProvider struct {
	pool *pgxpool.Pool
}

// PGURL - the pool url for cfg
func PGURL(cfg str.CurrentConfiguration) string {
	const (
		UTPL = "postgres://%s:%s@%s:%d/%s?pool_min_conns=%d&pool_max_conns=%d"
	)

	// min below WorkerCount starves a parallel Merge(); max caps the server at N simultaneous loads
	mn := cfg.WorkerCount
	mx := vv.SIMULTANEOUSQUERIES * cfg.WorkerCount

	pl := cfg.PGLogin
	return fmt.Sprintf(UTPL, pl.User, pl.Pass, pl.Host, pl.Port, pl.DBName, mn, mx)
}

// FillDBConnectionPool - build the pgxpool that the provider will Acquire() from
func FillDBConnectionPool(ctx context.Context, cfg str.CurrentConfiguration) (*PGProvider, error) {
	const (
		FAIL1   = "configuration error: could not ParseConfig() the url for %s@%s"
		FAIL2   = "could not connect to PostgreSQL"
		ERRRUN  = `dial error`
		FAILRUN = `'%s': the PostgreSQL server cannot be found; check that it is running and serving on port %d`
		ERRSRV  = `server error`
		FAILSRV = `'%s': there is configuration problem; see the following response from PostgreSQL:`
	)

	config, e := pgxpool.ParseConfig(PGURL(cfg))
	if e != nil {
		return nil, fmt.Errorf(FAIL1+": %w", cfg.PGLogin.User, cfg.PGLogin.Host, e)
	}

	thepool, e := pgxpool.NewWithConfig(ctx, config)
	if e == nil {
		e = thepool.Ping(ctx)
	}
	if e != nil {
		Msg.MAND(FAIL2)
		if strings.Contains(e.Error(), ERRRUN) {
			Msg.MAND(fmt.Sprintf(FAILRUN, ERRRUN, cfg.PGLogin.Port))
		}
		if strings.Contains(e.Error(), ERRSRV) {
			Msg.MAND(fmt.Sprintf(FAILSRV, ERRSRV))
			parts := strings.Split(e.Error(), ERRSRV)
			Msg.CRIT(parts[len(parts)-1])
		}
		if thepool != nil {
			thepool.Close()
		}
		return nil, fmt.Errorf("%s: %w", FAIL2, e)
	}
	return &PGProvider{pool: thepool}, nil
}

func (p *PGProvider) Names(ctx context.Context) ([]string, error) {
	const (
		Q = `SELECT DISTINCT corpus FROM documents ORDER BY corpus`
	)
	rows, err := p.pool.Query(ctx, Q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Iterate - the records of a corpus ordered by line
func (p *PGProvider) Iterate(ctx context.Context, name string) ([]Record, error) {
	const (
		Q = `SELECT ` + DOCCOLUMNS + ` FROM documents WHERE corpus = $1 ORDER BY line`
	)

	dbconn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer dbconn.Release()

	foundrows, err := dbconn.Query(ctx, Q, name)
	if err != nil {
		return nil, err
	}

	// nb: the query needs to satisfy the needs of RowToStructByPos
	found, err := pgx.CollectRows(foundrows, pgx.RowToStructByPos[dbrecord])
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoCorpus, name)
	}

	rr := make([]Record, len(found))
	for i, d := range found {
		rr[i] = d.record(name)
	}
	return rr, nil
}

func (p *PGProvider) Close() error {
	p.pool.Close()
	return nil
}

// NewProvider - the provider named by cfg.CorpusStore
func NewProvider(ctx context.Context, cfg str.CurrentConfiguration) (Provider, error) {
	switch cfg.CorpusStore {
	case "json":
		return NewJSONProvider(cfg.CorpusDir), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLiteFile)
	case "pgsql":
		return FillDBConnectionPool(ctx, cfg)
	default:
		return nil, errors.New("unknown corpus store: " + cfg.CorpusStore)
	}
}
