// Package taskgraph is the orchestration layer of the task graph system.
//
// The Service validates inputs, delegates to the graph store, calls the
// text-generation adapter, and shapes results for callers. It owns the
// consistency rules of the one multi-step write in the system, task
// decomposition.
package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HendryAvila/taskgraph/internal/genai"
	"github.com/HendryAvila/taskgraph/internal/graph"
)

// EnvTest is the only environment in which the bulk wipe is permitted.
const EnvTest = "test"

// defaultTimeout bounds every service operation unless configured
// otherwise.
const defaultTimeout = 30 * time.Second

// Store is the persistence surface the service drives. *graph.Store is
// the production implementation; tests substitute faulting wrappers.
type Store interface {
	CreateTask(ctx context.Context, p graph.CreateTaskParams) (*graph.Task, error)
	GetTask(ctx context.Context, id string) (*graph.Task, error)
	ListTasks(ctx context.Context) ([]graph.Task, error)
	CreateRelationship(ctx context.Context, p graph.CreateRelationshipParams) (*graph.Relationship, error)
	FetchGraph(ctx context.Context) ([]graph.Task, []graph.Relationship, error)
	ConnectedComponent(ctx context.Context, taskID string) ([]graph.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	DeleteAllTasks(ctx context.Context) error
}

// Service is the request-level orchestrator over the graph store and the
// generation adapter. Each operation runs independently within a derived
// deadline; no cross-request coordination is performed.
type Service struct {
	store   Store
	gen     genai.Generator
	log     *slog.Logger
	timeout time.Duration
	env     string
}

// Options tunes Service construction.
type Options struct {
	// Timeout bounds each operation; zero means the default.
	Timeout time.Duration
	// Environment gates DeleteAllTasks; only EnvTest permits it.
	Environment string
	// Logger receives operational events; nil discards them.
	Logger *slog.Logger
}

// New creates a Service with an explicitly owned store handle and
// generator, both injected by the composition root.
func New(store Store, gen genai.Generator, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:   store,
		gen:     gen,
		log:     opts.Logger,
		timeout: opts.Timeout,
		env:     opts.Environment,
	}
}

// opCtx derives the per-operation deadline context.
func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// timeoutErr maps deadline expiry onto the taxonomy; other errors pass
// through unchanged.
func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// CreateTaskInput holds caller-supplied fields for task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// CreateTask validates the input and persists a new task. An empty title
// is rejected; an empty status defaults to TODO.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*graph.Task, error) {
	if in.Title == "" {
		return nil, ErrEmptyTitle
	}
	status := graph.Status(in.Status)
	if in.Status == "" {
		status = graph.StatusTodo
	} else if !graph.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	task, err := s.store.CreateTask(ctx, graph.CreateTaskParams{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	})
	if err != nil {
		return nil, timeoutErr(err)
	}
	s.log.Debug("task created", "id", task.ID, "title", task.Title)
	return task, nil
}

// ListTasks returns every task, oldest first.
func (s *Service) ListTasks(ctx context.Context) ([]graph.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, timeoutErr(err)
	}
	return tasks, nil
}

// ─── Relationships ───────────────────────────────────────────────────────────

// CreateRelationshipInput holds caller-supplied fields for edge creation.
type CreateRelationshipInput struct {
	SourceID string
	TargetID string
	Type     string
	Weight   *float64
}

// CreateRelationship validates the edge type and delegates to the store.
// A missing endpoint surfaces as graph.ErrNotFound — a client error, not
// a server fault. Duplicate edges and self-loops are allowed.
func (s *Service) CreateRelationship(ctx context.Context, in CreateRelationshipInput) (*graph.Relationship, error) {
	relType := graph.RelType(in.Type)
	if !graph.ValidRelType(relType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRelType, in.Type)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rel, err := s.store.CreateRelationship(ctx, graph.CreateRelationshipParams{
		SourceID: in.SourceID,
		TargetID: in.TargetID,
		Type:     relType,
		Weight:   in.Weight,
	})
	if err != nil {
		return nil, timeoutErr(err)
	}
	return rel, nil
}

// ─── Graph view ──────────────────────────────────────────────────────────────

// GetGraph reads the whole graph and shapes it for the caller: every
// task becomes a positioned node and edges are filtered to those whose
// endpoints both resolve.
func (s *Service) GetGraph(ctx context.Context) (*GraphView, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tasks, edges, err := s.store.FetchGraph(ctx)
	if err != nil {
		return nil, timeoutErr(err)
	}
	return assemble(tasks, edges), nil
}

// ─── Summarize ───────────────────────────────────────────────────────────────

// SummaryResult is the output of SummarizeConnected: the synopsis plus
// the task set it covers.
type SummaryResult struct {
	Summary string       `json:"summary"`
	Tasks   []graph.Task `json:"tasks"`
}

// SummarizeConnected collects the task's connected component (the task
// is its own 0-hop neighbor) and asks the generator for a synopsis.
// Generation failures degrade to the adapter's fallback text; only a
// missing task is an error.
func (s *Service) SummarizeConnected(ctx context.Context, taskID string) (*SummaryResult, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	component, err := s.store.ConnectedComponent(ctx, taskID)
	if err != nil {
		return nil, timeoutErr(err)
	}

	summary := s.gen.Summarize(ctx, component)
	return &SummaryResult{Summary: summary, Tasks: component}, nil
}

// ─── Decompose ───────────────────────────────────────────────────────────────

// DecomposeTask expands one task into generated subtasks, each persisted
// with parentId set and linked back to the parent with a SUBTASK_OF edge.
//
// This is the one compound write in the system and it is deliberately
// NOT atomic: if generation fails, nothing is written; if a write fails
// partway through the loop, already-committed subtasks stay committed.
// Each subtask and its edge are appended independently, so a partial
// decomposition is a valid persisted state. The error is reported to the
// caller together with the records created so far, and is never retried
// automatically — a retry would add duplicate subtasks, not repair the
// partial state.
func (s *Service) DecomposeTask(ctx context.Context, taskID string) ([]graph.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, timeoutErr(err)
	}

	subtasks, err := s.gen.Decompose(ctx, *task)
	if err != nil {
		// Abort before any writes.
		return nil, timeoutErr(fmt.Errorf("decompose generation: %w", err))
	}

	created := make([]graph.Task, 0, len(subtasks))
	for _, sub := range subtasks {
		parentID := task.ID
		st, err := s.store.CreateTask(ctx, graph.CreateTaskParams{
			Title:       sub.Title,
			Description: sub.Description,
			Status:      graph.StatusTodo,
			ParentID:    &parentID,
		})
		if err != nil {
			s.log.Warn("decomposition partially committed",
				"task", taskID, "created", len(created), "proposed", len(subtasks))
			return created, timeoutErr(err)
		}
		created = append(created, *st)

		_, err = s.store.CreateRelationship(ctx, graph.CreateRelationshipParams{
			SourceID: st.ID,
			TargetID: task.ID,
			Type:     graph.RelSubtaskOf,
		})
		if err != nil {
			s.log.Warn("decomposition partially committed",
				"task", taskID, "created", len(created), "proposed", len(subtasks))
			return created, timeoutErr(err)
		}
	}

	s.log.Debug("task decomposed", "task", taskID, "subtasks", len(created))
	return created, nil
}

// ─── Deletion ────────────────────────────────────────────────────────────────

// DeleteTask removes the task and every edge touching it. Deleting a
// nonexistent id is a no-op success.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return timeoutErr(err)
	}
	s.log.Debug("task deleted", "id", taskID)
	return nil
}

// DeleteAllTasks wipes the whole graph. Permitted only in the test
// environment; the store itself does not enforce this.
func (s *Service) DeleteAllTasks(ctx context.Context) error {
	if s.env != EnvTest {
		return ErrWipeForbidden
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.DeleteAllTasks(ctx); err != nil {
		return timeoutErr(err)
	}
	s.log.Info("all tasks deleted")
	return nil
}
