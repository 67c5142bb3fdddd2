package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/niklasfasching/anneal/geo"
)

type Connection interface {
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

type DB struct {
	funcs map[string]any
	stmts map[string]*sql.Stmt
	*sql.DB
}

var driverIndex = 0
var driverMu sync.Mutex
var defaultFuncs = map[string]any{
	"dist": dist,
}

var NoResultsErr = fmt.Errorf("empty results")

// New opens the database name, registers the Go functions fs (all of which
// must be deterministic) alongside the defaults, applies pending migrations
// and prepares stmts.
func New(name string, migrations []string, stmts map[string]string, fs map[string]any) (*DB, error) {
	d := &DB{
		funcs: map[string]any{},
		stmts: map[string]*sql.Stmt{},
	}
	maps.Copy(d.funcs, defaultFuncs)
	maps.Copy(d.funcs, fs)
	driverMu.Lock()
	driver := fmt.Sprintf("sqlite3-anneal-%d", driverIndex)
	driverIndex++
	driverMu.Unlock()
	sql.Register(driver, &sqlite3.SQLiteDriver{ConnectHook: d.connectHook})
	db, err := sql.Open(driver, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	if name == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	d.DB = db
	if err := d.migrate(migrations); err != nil {
		db.Close()
		return nil, err
	}
	for k, sql := range stmts {
		stmt, err := db.Prepare(sql)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare %q: %w", k, err)
		}
		d.stmts[k] = stmt
	}
	return d, nil
}

func (db *DB) Stmt(k string) *sql.Stmt {
	return db.stmts[k]
}

func (db *DB) connectHook(c *sqlite3.SQLiteConn) error {
	for name, f := range db.funcs {
		if err := c.RegisterFunc(name, f, true); err != nil {
			return fmt.Errorf("failed to register %q: %w", name, err)
		}
	}
	return nil
}

func (db *DB) migrate(migrations []string) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS _migrations (sql TEXT)`); err != nil {
		return fmt.Errorf("failed to create _migrations table: %w", err)
	}
	applied, err := queryStrings(tx, "SELECT sql FROM _migrations ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("failed to query _migrations: %w", err)
	} else if len(migrations) < len(applied) {
		return fmt.Errorf("database has %d migrations applied but only %d are known", len(applied), len(migrations))
	}
	for i := range applied {
		if migrations[i] != applied[i] {
			return fmt.Errorf("migration %d changed after it was applied: %q", i, applied[i])
		}
	}
	for _, stmt := range migrations[len(applied):] {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration %q: %w", stmt, err)
		}
		if _, err := tx.Exec("INSERT INTO _migrations (sql) VALUES (?)", stmt); err != nil {
			return fmt.Errorf("failed to record migration %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}

func queryStrings(c Connection, q string, args ...any) ([]string, error) {
	rows, err := c.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vs := []string{}
	for rows.Next() {
		v := ""
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, rows.Err()
}

func dist(x1, y1, x2, y2 float64) float64 {
	return geo.Dist(geo.Point{X: x1, Y: y1}, geo.Point{X: x2, Y: y2})
}
