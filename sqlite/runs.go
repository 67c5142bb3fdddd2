package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is the outcome of a single annealing search.
type Run struct {
	ID              int64
	Problem         string
	Seed            int64
	Steps, Accepted int
	Reason          string
	Score           float64
	X, Y            float64
	Solution        string
	Started         time.Time
}

var RunMigrations = []string{
	`CREATE TABLE runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    problem TEXT NOT NULL,
    seed INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    accepted INTEGER NOT NULL,
    reason TEXT NOT NULL,
    score REAL NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    solution TEXT NOT NULL,
    started DATETIME NOT NULL)`,
	`CREATE INDEX runs_problem_score ON runs (problem, score)`,
}

const runCols = "id, problem, seed, steps, accepted, reason, score, x, y, solution, started"

var runStmts = map[string]string{
	"insertRun": `INSERT INTO runs (problem, seed, steps, accepted, reason, score, x, y, solution, started)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	"run":      "SELECT " + runCols + " FROM runs WHERE id = ?",
	"runs":     "SELECT " + runCols + " FROM runs WHERE problem = ? ORDER BY score, id LIMIT ?",
	"runsNear": "SELECT " + runCols + " FROM runs WHERE problem = ? ORDER BY dist(x, y, ?, ?), id LIMIT ?",
}

func Open(name string) (*DB, error) {
	return New(name, RunMigrations, runStmts, nil)
}

func (db *DB) InsertRun(r Run) (int64, error) {
	if r.Started.IsZero() {
		r.Started = time.Now()
	}
	result, err := db.Stmt("insertRun").Exec(r.Problem, r.Seed, r.Steps, r.Accepted, r.Reason,
		r.Score, r.X, r.Y, r.Solution, r.Started.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) Run(id int64) (Run, error) {
	rs, err := scanRuns(db.Stmt("run").Query(id))
	if err != nil {
		return Run{}, err
	} else if len(rs) != 1 {
		return Run{}, fmt.Errorf("run %d: %w", id, NoResultsErr)
	}
	return rs[0], nil
}

// Runs returns the best scoring runs of problem first.
func (db *DB) Runs(problem string, limit int) ([]Run, error) {
	return scanRuns(db.Stmt("runs").Query(problem, limit))
}

// RunsNear returns the runs of problem whose solution is closest to (x, y).
func (db *DB) RunsNear(problem string, x, y float64, limit int) ([]Run, error) {
	return scanRuns(db.Stmt("runsNear").Query(problem, x, y, limit))
}

func scanRuns(rows *sql.Rows, err error) ([]Run, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()
	rs := []Run{}
	for rows.Next() {
		r := Run{}
		if err := rows.Scan(&r.ID, &r.Problem, &r.Seed, &r.Steps, &r.Accepted, &r.Reason,
			&r.Score, &r.X, &r.Y, &r.Solution, &r.Started); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rs = append(rs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to iterate rows"), err)
	}
	return rs, nil
}
