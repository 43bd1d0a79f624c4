// Package pipeline runs the grouping stages in order: identity resolution and
// graph building, weight accumulation, tier classification, clustering, and the
// unmet-request report. Each stage finishes before the next one starts.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/peer-grouping/pkg/config"
	"github.com/gilchrisn/peer-grouping/pkg/grouping"
	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/prefgraph"
	"github.com/gilchrisn/peer-grouping/pkg/priority"
	"github.com/gilchrisn/peer-grouping/pkg/report"
	"github.com/gilchrisn/peer-grouping/pkg/validation"
	"github.com/gilchrisn/peer-grouping/pkg/weights"
)

// Pipeline holds the validated configuration for one or more runs.
type Pipeline struct {
	cfg        *config.Config
	engine     *grouping.Engine
	thresholds priority.Thresholds
	logger     zerolog.Logger
}

// Result contains the output of every stage.
type Result struct {
	RunID       string
	Graph       *prefgraph.Graph
	Weights     *weights.Accumulator
	Edges       []models.PriorityEdge
	Clusters    *grouping.Result
	Unmet       []models.UnmetRequest
	Diagnostics *validation.Report
	// Modularity of the final groups over the weighted preference graph.
	Modularity float64
	RuntimeMS  int64
}

// New validates cfg. Configuration errors surface here, before any row is read.
func New(cfg *config.Config) (*Pipeline, error) {
	return NewWithLogger(cfg, cfg.CreateLogger())
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := grouping.NewEngine(cfg.GroupingOptions(), logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:        cfg,
		engine:     engine,
		thresholds: cfg.Thresholds(),
		logger:     logger,
	}, nil
}

// Build runs only the graph, weight and diagnostic stages.
func (p *Pipeline) Build(subs []prefgraph.Submission) (*prefgraph.Graph, *weights.Accumulator, *validation.Report) {
	g := prefgraph.Build(subs)
	for _, rowErr := range g.RowErrors {
		p.logger.Warn().
			Int("row", rowErr.Row).
			Int("line", rowErr.Line).
			Str("field", rowErr.Field).
			Err(rowErr.Err).
			Msg("Skipping submission entry")
	}

	acc := weights.Accumulate(g.Rows)
	diag := validation.Analyze(g, acc, p.cfg.ValidationOptions())
	return g, acc, diag
}

// Run executes every stage. Invariant violations abort the run; malformed names and
// repeated submissions are collected in Result.Graph.RowErrors and the run continues.
func (p *Pipeline) Run(ctx context.Context, subs []prefgraph.Submission) (*Result, error) {
	startTime := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With().Str("run_id", result.RunID).Logger()

	logger.Info().Int("submissions", len(subs)).Msg("Starting grouping pipeline")

	result.Graph, result.Weights, result.Diagnostics = p.Build(subs)
	if err := validation.ValidateGraphStructure(result.Graph); err != nil {
		return nil, &models.InvariantViolationError{Op: "pipeline.Build", Detail: err.Error()}
	}
	logger.Info().
		Int("rows", len(result.Graph.Rows)).
		Int("students", result.Graph.N()).
		Int("pairs", result.Weights.Len()).
		Int("row_errors", len(result.Graph.RowErrors)).
		Msg("Preference graph built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges, err := priority.Classify(result.Weights, p.thresholds)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	result.Edges = edges

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusters, err := p.engine.Cluster(result.Graph.N(), edges)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}
	result.Clusters = clusters

	unmet, err := report.Unmet(result.Graph.Rows, clusters)
	if err != nil {
		return nil, fmt.Errorf("unmet report failed: %w", err)
	}
	result.Unmet = unmet
	result.Modularity = Modularity(result.Weights, clusters)

	result.RuntimeMS = time.Since(startTime).Milliseconds()
	logger.Info().
		Int("groups", len(clusters.Groups)).
		Int("unmet", len(unmet)).
		Float64("modularity", result.Modularity).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("Grouping pipeline completed")

	return result, nil
}

// Document builds the export view with display names and row warnings.
func (r *Result) Document() *report.Document {
	names := func(id models.StudentID) (string, bool) {
		s, ok := r.Graph.Registry.Identity(id)
		if !ok {
			return "", false
		}
		return s.DisplayName(), true
	}
	doc := report.NewDocument(r.RunID, r.Clusters, r.Unmet, names)
	doc.Modularity = r.Modularity
	for _, rowErr := range r.Graph.RowErrors {
		doc.Warnings = append(doc.Warnings, rowErr.Error())
	}
	return doc
}

// Modularity scores the groups against the accumulated weights. A graph with no
// pairs scores 0.
func Modularity(acc *weights.Accumulator, clusters *grouping.Result) float64 {
	if acc.Len() == 0 || len(clusters.Groups) == 0 {
		return 0
	}
	communities := make([][]graph.Node, len(clusters.Groups))
	for i, members := range clusters.Groups {
		for _, id := range members {
			communities[i] = append(communities[i], simple.Node(int64(id)))
		}
	}
	return community.Q(acc.Graph(clusters.N()), communities, 1)
}
