package graph_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HendryAvila/taskgraph/internal/graph"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *graph.Store {
	t.Helper()
	s, err := graph.New(graph.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreateTask creates a task or fails the test.
func mustCreateTask(t *testing.T, s *graph.Store, title string) *graph.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), graph.CreateTaskParams{Title: title})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

// mustRelate creates an edge or fails the test.
func mustRelate(t *testing.T, s *graph.Store, source, target string, typ graph.RelType) *graph.Relationship {
	t.Helper()
	rel, err := s.CreateRelationship(context.Background(), graph.CreateRelationshipParams{
		SourceID: source,
		TargetID: target,
		Type:     typ,
	})
	if err != nil {
		t.Fatalf("relate %s -> %s: %v", source, target, err)
	}
	return rel
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := graph.New(graph.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "taskgraph.db")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()

	s1, err := graph.New(graph.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	task := mustCreateTask(t, s1, "persisted")
	s1.Close()

	s2, err := graph.New(graph.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Title != "persisted" {
		t.Errorf("title = %q, want %q", got.Title, "persisted")
	}
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

func TestCreateTask_AssignsIDAndTimestamps(t *testing.T) {
	s := newTestStore(t)

	task, err := s.CreateTask(context.Background(), graph.CreateTaskParams{
		Title:       "write report",
		Description: "quarterly numbers",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if task.ID == "" {
		t.Error("expected a generated id")
	}
	if task.Status != graph.StatusTodo {
		t.Errorf("status = %q, want default %q", task.Status, graph.StatusTodo)
	}
	if task.CreatedAt == "" || task.CreatedAt != task.UpdatedAt {
		t.Errorf("timestamps: created=%q updated=%q, want equal and non-empty",
			task.CreatedAt, task.UpdatedAt)
	}
	if task.ParentID != nil {
		t.Errorf("parentId = %v, want nil", *task.ParentID)
	}
}

func TestCreateTask_ExplicitStatusAndParent(t *testing.T) {
	s := newTestStore(t)
	parent := mustCreateTask(t, s, "parent")

	task, err := s.CreateTask(context.Background(), graph.CreateTaskParams{
		Title:    "child",
		Status:   graph.StatusInProgress,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != graph.StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, graph.StatusInProgress)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("parentId = %v, want %q", got.ParentID, parent.ID)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTask(context.Background(), "no-such-id")
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListTasks_EmptyThenPopulated(t *testing.T) {
	s := newTestStore(t)

	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty store, got %d tasks", len(tasks))
	}

	mustCreateTask(t, s, "first")
	mustCreateTask(t, s, "second")

	tasks, err = s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
}

// ─── Relationships ───────────────────────────────────────────────────────────

func TestCreateRelationship_MissingEndpoint(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")

	_, err := s.CreateRelationship(context.Background(), graph.CreateRelationshipParams{
		SourceID: a.ID,
		TargetID: "ghost",
		Type:     graph.RelDependsOn,
	})
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("missing target: err = %v, want ErrNotFound", err)
	}

	_, err = s.CreateRelationship(context.Background(), graph.CreateRelationshipParams{
		SourceID: "ghost",
		TargetID: a.ID,
		Type:     graph.RelDependsOn,
	})
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("missing source: err = %v, want ErrNotFound", err)
	}
}

func TestCreateRelationship_DuplicatesAllowed(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")

	r1 := mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)
	r2 := mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)
	if r1.ID == r2.ID {
		t.Fatalf("duplicate edges share id %d", r1.ID)
	}

	_, edges, err := s.FetchGraph(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(edges) != 2 {
		t.Errorf("expected both duplicate edges, got %d", len(edges))
	}
}

func TestCreateRelationship_SelfLoopAllowed(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")

	rel := mustRelate(t, s, a.ID, a.ID, graph.RelRelatedTo)
	if rel.SourceID != rel.TargetID {
		t.Fatalf("expected self-loop, got %s -> %s", rel.SourceID, rel.TargetID)
	}

	rels, err := s.Relationships(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("expected 1 edge, got %d", len(rels))
	}
}

func TestRelationships_BothDirections(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	c := mustCreateTask(t, s, "c")

	mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)
	mustRelate(t, s, c.ID, b.ID, graph.RelRelatedTo)

	rels, err := s.Relationships(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("expected incoming and outgoing edges, got %d", len(rels))
	}
}

// ─── Graph reads ─────────────────────────────────────────────────────────────

func TestFetchGraph_IncludesIsolatedTasks(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	mustCreateTask(t, s, "isolated")
	mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)

	tasks, edges, err := s.FetchGraph(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(tasks))
	}
	if len(edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(edges))
	}
}

func TestConnectedComponent_UndirectedChain(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	c := mustCreateTask(t, s, "c")
	mustCreateTask(t, s, "elsewhere")

	// a -> b and c -> b: reaching c from a requires traversing c->b
	// against its direction.
	mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)
	mustRelate(t, s, c.ID, b.ID, graph.RelRelatedTo)

	comp, err := s.ConnectedComponent(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if len(comp) != 3 {
		t.Fatalf("expected 3 tasks in component, got %d", len(comp))
	}
	if comp[0].ID != a.ID {
		t.Errorf("root task must come first, got %q", comp[0].Title)
	}

	ids := map[string]bool{}
	for _, task := range comp {
		ids[task.ID] = true
	}
	for _, want := range []string{a.ID, b.ID, c.ID} {
		if !ids[want] {
			t.Errorf("component missing task %s", want)
		}
	}
}

func TestConnectedComponent_IsolatedTask(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "alone")

	comp, err := s.ConnectedComponent(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if len(comp) != 1 || comp[0].ID != a.ID {
		t.Fatalf("expected just the task itself, got %d tasks", len(comp))
	}
}

func TestConnectedComponent_RootNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ConnectedComponent(context.Background(), "ghost")
	if !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ─── Deletion ────────────────────────────────────────────────────────────────

func TestDeleteTask_DetachesEdges(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)
	mustRelate(t, s, b.ID, a.ID, graph.RelRelatedTo)

	if err := s.DeleteTask(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetTask(context.Background(), a.ID); !errors.Is(err, graph.ErrNotFound) {
		t.Errorf("deleted task still readable: %v", err)
	}

	rels, err := s.Relationships(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("expected no edges after detach delete, got %d", len(rels))
	}
}

func TestDeleteTask_Idempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteTask(context.Background(), "never-existed"); err != nil {
		t.Fatalf("deleting a nonexistent task must succeed, got %v", err)
	}
}

func TestDeleteAllTasks_WipesEverything(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateTask(t, s, "a")
	b := mustCreateTask(t, s, "b")
	mustRelate(t, s, a.ID, b.ID, graph.RelDependsOn)

	if err := s.DeleteAllTasks(context.Background()); err != nil {
		t.Fatalf("wipe: %v", err)
	}

	tasks, edges, err := s.FetchGraph(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tasks) != 0 || len(edges) != 0 {
		t.Errorf("expected empty graph, got %d tasks %d edges", len(tasks), len(edges))
	}
}
