package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/peer-grouping/pkg/config"
	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/prefgraph"
)

func newPipeline(t *testing.T, cfg *config.Config) *Pipeline {
	t.Helper()
	p, err := NewWithLogger(cfg, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func TestRunThreeMutualStudents(t *testing.T) {
	subs := []prefgraph.Submission{
		{Requester: "Ann Lee", Requested: []string{"Bob Ray", "Cy Tan"}},
		{Requester: "Bob Ray", Requested: []string{"Ann Lee", "Cy Tan"}},
		{Requester: "Cy Tan", Requested: []string{"Ann Lee", "Bob Ray"}},
	}
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), subs)
	require.NoError(t, err)

	for _, e := range result.Edges {
		assert.LessOrEqual(t, int(e.Tier), 3)
	}
	require.Len(t, result.Clusters.Groups, 1)
	assert.Len(t, result.Clusters.Groups[0], 3)
	assert.Empty(t, result.Unmet)
	assert.NotEmpty(t, result.RunID)
}

func TestRunStarRequest(t *testing.T) {
	subs := []prefgraph.Submission{
		{Requester: "Ann Lee", Requested: []string{"Bob Ray", "Cy Tan", "Dee Fox", "Eve Moss"}},
	}
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), subs)
	require.NoError(t, err)

	assert.Equal(t, [][]models.StudentID{{0, 1, 2, 3}, {4}}, result.Clusters.Groups)
	assert.Equal(t, []models.UnmetRequest{{Requester: 0, Requested: 4}}, result.Unmet)

	doc := result.Document()
	require.Len(t, doc.Unmet, 1)
	assert.Equal(t, "Ann Lee", doc.Unmet[0].Requester.Name)
	assert.Equal(t, "Eve Moss", doc.Unmet[0].Requested.Name)
}

func TestNewRejectsZeroGroupSize(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Set("grouping.max_group_size", 0)

	p, err := NewWithLogger(cfg, zerolog.Nop())
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}

func TestRunMalformedRowDoesNotAbort(t *testing.T) {
	subs := []prefgraph.Submission{
		{Requester: "Jane Q R S Doe", Requested: []string{"Ann Lee"}},
		{Requester: "Ann Lee", Requested: []string{"Bob Ray"}},
		{Requester: "Bob Ray", Requested: []string{"Ann Lee"}},
	}
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), subs)
	require.NoError(t, err)

	require.Len(t, result.Graph.RowErrors, 1)
	assert.ErrorIs(t, result.Graph.RowErrors[0], models.ErrMalformedName)
	assert.Equal(t, [][]models.StudentID{{0, 1}}, result.Clusters.Groups)
	assert.Len(t, result.Document().Warnings, 1)
}

func TestRunRepeatedSubmissionDoesNotAbort(t *testing.T) {
	subs := []prefgraph.Submission{
		{Requester: "Ann Lee", Requested: []string{"Bob Ray"}},
		{Requester: "Cy Tan", Requested: []string{"Dee Fox"}},
		{Requester: "Ann Lee", Requested: []string{"Bob Ray", "Cy Tan"}},
	}
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), subs)
	require.NoError(t, err)

	require.Len(t, result.Graph.RowErrors, 1)
	assert.ErrorIs(t, result.Graph.RowErrors[0], prefgraph.ErrDuplicateSubmission)
	assert.Equal(t, [][]models.StudentID{{0, 1}, {2, 3}}, result.Clusters.Groups)
	assert.Empty(t, result.Unmet)
	assert.Len(t, result.Document().Warnings, 1)
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline(t, config.NewConfig()).Run(ctx, []prefgraph.Submission{{Requester: "Ann Lee"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInput(t *testing.T) {
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Clusters.Groups)
	assert.Empty(t, result.Unmet)
}

func TestModularity(t *testing.T) {
	subs := []prefgraph.Submission{
		{Requester: "Ann Lee", Requested: []string{"Bob Ray"}},
		{Requester: "Bob Ray", Requested: []string{"Ann Lee"}},
		{Requester: "Cy Tan", Requested: []string{"Dee Fox"}},
		{Requester: "Dee Fox", Requested: []string{"Cy Tan"}},
	}
	result, err := newPipeline(t, config.NewConfig()).Run(context.Background(), subs)
	require.NoError(t, err)
	require.Len(t, result.Clusters.Groups, 2)
	// Two disjoint pairs, each kept together: Q = 2 * (1/2 - 1/4).
	assert.InDelta(t, 0.5, result.Modularity, 1e-9)
	assert.InDelta(t, 0.5, result.Document().Modularity, 1e-9)
}
