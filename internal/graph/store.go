// Package graph implements the persistent task graph store.
//
// It uses SQLite to persist Task nodes and the typed, directed
// relationships between them, and provides the traversal primitives the
// service layer builds on: full-graph reads, undirected connected-component
// walks, and detach-delete.
package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var to allow tests to control timestamps.
var timeNow = time.Now

// ─── Types ───────────────────────────────────────────────────────────────────

// Status is the lifecycle state of a task.
type Status string

// Task statuses.
const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// RelType is the kind of a directed edge between two tasks.
type RelType string

// Relationship types.
const (
	RelDependsOn RelType = "DEPENDS_ON"
	RelRelatedTo RelType = "RELATED_TO"
	RelSubtaskOf RelType = "SUBTASK_OF"
)

// ValidRelType reports whether t is one of the known relationship types.
func ValidRelType(t RelType) bool {
	switch t {
	case RelDependsOn, RelRelatedTo, RelSubtaskOf:
		return true
	}
	return false
}

// Task is a node in the graph: one unit of work.
//
// JSON field names are camelCase — they are the wire contract consumed
// by graph-view clients and must stay stable.
type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	ParentID    *string `json:"parentId,omitempty"`
}

// Relationship is a directed, typed edge between two existing tasks.
type Relationship struct {
	ID       int64    `json:"id"`
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Type     RelType  `json:"type"`
	Weight   *float64 `json:"weight,omitempty"`
}

// CreateTaskParams holds the input for creating a new task.
// ParentID is set only by decomposition, never by direct creation.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      Status
	ParentID    *string
}

// CreateRelationshipParams holds the input for creating a new edge.
type CreateRelationshipParams struct {
	SourceID string
	TargetID string
	Type     RelType
	Weight   *float64
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds graph store configuration.
type Config struct {
	DataDir string
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent task graph engine backed by SQLite.
//
// Concurrency: the store offers no isolation beyond what SQLite provides
// natively. Concurrent relationship creation for the same pair may produce
// duplicate edges and concurrent deletes of the same id both succeed —
// both are permitted states.
type Store struct {
	db    *sql.DB
	cfg   Config
	hooks storeHooks
}

// storeHooks are indirection points over the raw SQL calls, used by
// tests to inject storage faults. Zero-value hooks call the database
// directly.
type storeHooks struct {
	exec  func(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error)
	query func(ctx context.Context, db *sql.DB, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execHook(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(ctx, s.db, query, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) queryHook(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.hooks.query != nil {
		return s.hooks.query(ctx, s.db, query, args...)
	}
	return s.db.QueryContext(ctx, query, args...)
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("graph: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "taskgraph.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("graph: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("graph: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("graph: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	// Relationships deliberately have NO uniqueness constraint and NO
	// self-loop guard: duplicate edges and self-loops are permitted
	// store states. There is also no FK cascade — DeleteTask removes
	// edges itself so the detach semantics stay visible in one place.
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'TODO',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			parent_id   TEXT
		);

		CREATE TABLE IF NOT EXISTS relationships (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id  TEXT NOT NULL,
			target_id  TEXT NOT NULL,
			type       TEXT NOT NULL,
			weight     REAL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_rel_source ON relationships(source_id);
		CREATE INDEX IF NOT EXISTS idx_rel_target ON relationships(target_id);
		CREATE INDEX IF NOT EXISTS idx_task_parent ON tasks(parent_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// CreateTask assigns an id and timestamps, persists the task, and returns
// the full record. At creation createdAt always equals updatedAt.
func (s *Store) CreateTask(ctx context.Context, p CreateTaskParams) (*Task, error) {
	status := p.Status
	if status == "" {
		status = StatusTodo
	}

	now := timeNow().UTC().Format(time.RFC3339)
	t := &Task{
		ID:          uuid.New().String(),
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
		ParentID:    p.ParentID,
	}

	_, err := s.execHook(ctx,
		`INSERT INTO tasks (id, title, description, status, created_at, updated_at, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt, t.ParentID,
	)
	if err != nil {
		return nil, &StorageError{Op: "create task", Err: err}
	}
	return t, nil
}

// GetTask retrieves a single task by id. Returns ErrNotFound if no task
// with that id exists.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	rows, err := s.queryHook(ctx,
		`SELECT id, title, description, status, created_at, updated_at, parent_id
		 FROM tasks WHERE id = ?`, id,
	)
	if err != nil {
		return nil, &StorageError{Op: "get task", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &StorageError{Op: "get task", Err: err}
		}
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	var t Task
	if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.ParentID); err != nil {
		return nil, &StorageError{Op: "get task", Err: err}
	}
	return &t, nil
}

// ListTasks returns every task, oldest first.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.queryHook(ctx,
		`SELECT id, title, description, status, created_at, updated_at, parent_id
		 FROM tasks ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, &StorageError{Op: "list tasks", Err: err}
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.ParentID); err != nil {
			return nil, &StorageError{Op: "scan task", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// taskExists reports whether a task with the given id is present.
func (s *Store) taskExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "check task", Err: err}
	}
	return true, nil
}

// ─── Relationships ───────────────────────────────────────────────────────────

// CreateRelationship creates a directed typed edge between two existing
// tasks. Returns ErrNotFound when either endpoint is missing.
//
// Creation is NOT idempotent: repeated calls with identical endpoints and
// type create parallel duplicate edges, and self-loops are permitted.
func (s *Store) CreateRelationship(ctx context.Context, p CreateRelationshipParams) (*Relationship, error) {
	for _, id := range []string{p.SourceID, p.TargetID} {
		ok, err := s.taskExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("relationship endpoint %q: %w", id, ErrNotFound)
		}
	}

	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.execHook(ctx,
		`INSERT INTO relationships (source_id, target_id, type, weight, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.SourceID, p.TargetID, string(p.Type), p.Weight, now,
	)
	if err != nil {
		return nil, &StorageError{Op: "create relationship", Err: err}
	}
	id, _ := res.LastInsertId()

	return &Relationship{
		ID:       id,
		SourceID: p.SourceID,
		TargetID: p.TargetID,
		Type:     p.Type,
		Weight:   p.Weight,
	}, nil
}

// Relationships returns every edge where the task is source or target.
func (s *Store) Relationships(ctx context.Context, taskID string) ([]Relationship, error) {
	rows, err := s.queryHook(ctx,
		`SELECT id, source_id, target_id, type, weight
		 FROM relationships
		 WHERE source_id = ? OR target_id = ?
		 ORDER BY id ASC`,
		taskID, taskID,
	)
	if err != nil {
		return nil, &StorageError{Op: "query relationships", Err: err}
	}
	defer rows.Close()

	var result []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight); err != nil {
			return nil, &StorageError{Op: "scan relationship", Err: err}
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query relationships", Err: err}
	}
	return result, nil
}

// ─── Graph reads ─────────────────────────────────────────────────────────────

// FetchGraph returns every task together with every relationship in the
// store. Tasks with zero edges still appear in the node slice; duplicate
// edges are returned as-is.
func (s *Store) FetchGraph(ctx context.Context) ([]Task, []Relationship, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.queryHook(ctx,
		`SELECT id, source_id, target_id, type, weight FROM relationships ORDER BY id ASC`,
	)
	if err != nil {
		return nil, nil, &StorageError{Op: "query relationships", Err: err}
	}
	defer rows.Close()

	var edges []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight); err != nil {
			return nil, nil, &StorageError{Op: "scan relationship", Err: err}
		}
		edges = append(edges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &StorageError{Op: "fetch graph", Err: err}
	}
	return tasks, edges, nil
}

// ConnectedComponent returns the task itself plus every task reachable
// from it through relationships of any type, traversed in either
// direction, at any distance. BFS with a visited set; the root task is
// always the first element. Returns ErrNotFound if taskID does not exist.
func (s *Store) ConnectedComponent(ctx context.Context, taskID string) ([]Task, error) {
	root, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{taskID: true}
	queue := []string{taskID}
	component := []Task{*root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		rels, err := s.Relationships(ctx, current)
		if err != nil {
			return nil, err
		}

		for _, rel := range rels {
			// Follow the edge away from the current node, whichever
			// end we sit on.
			other := rel.TargetID
			if other == current {
				other = rel.SourceID
			}
			if visited[other] {
				continue
			}
			visited[other] = true

			t, err := s.GetTask(ctx, other)
			if errors.Is(err, ErrNotFound) {
				// Endpoint deleted between queries: skip the stale edge.
				continue
			}
			if err != nil {
				// Anything else is a storage fault; a silently
				// truncated component is worse than no component.
				return nil, err
			}
			component = append(component, *t)
			queue = append(queue, other)
		}
	}

	return component, nil
}

// ─── Deletion ────────────────────────────────────────────────────────────────

// DeleteTask removes the task and every relationship where it is source
// or target ("detach delete"). Idempotent: deleting a nonexistent id is a
// no-op success.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "delete task", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM relationships WHERE source_id = ? OR target_id = ?`, taskID, taskID,
	); err != nil {
		return &StorageError{Op: "detach task", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
		return &StorageError{Op: "delete task", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "delete task", Err: err}
	}
	return nil
}

// DeleteAllTasks wipes every task and relationship. The store does not
// gate this; the service restricts it to non-production environments.
func (s *Store) DeleteAllTasks(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "delete all tasks", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return &StorageError{Op: "delete all relationships", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return &StorageError{Op: "delete all tasks", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "delete all tasks", Err: err}
	}
	return nil
}
