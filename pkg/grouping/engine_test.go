package grouping

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/priority"
	"github.com/gilchrisn/peer-grouping/pkg/weights"
)

func newTestEngine(t *testing.T, maxSize int) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxGroupSize = maxSize
	engine, err := NewEngine(opts, zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func edgesFor(t *testing.T, rows []models.RequestRow) []models.PriorityEdge {
	t.Helper()
	edges, err := priority.Classify(weights.Accumulate(rows), priority.DefaultThresholds())
	require.NoError(t, err)
	return edges
}

func ids(xs ...int) []models.StudentID {
	out := make([]models.StudentID, len(xs))
	for i, x := range xs {
		out[i] = models.StudentID(x)
	}
	return out
}

func TestClusterEveryoneRequestsEveryone(t *testing.T) {
	rows := []models.RequestRow{
		{Requester: 0, Requested: ids(1, 2)},
		{Requester: 1, Requested: ids(0, 2)},
		{Requester: 2, Requested: ids(0, 1)},
	}
	edges := edgesFor(t, rows)
	for _, e := range edges {
		assert.LessOrEqual(t, int(e.Tier), 3)
	}

	result, err := newTestEngine(t, 4).Cluster(3, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0, 1, 2)}, result.Groups)
}

func TestClusterStarRequestHitsSizeCap(t *testing.T) {
	rows := []models.RequestRow{{Requester: 0, Requested: ids(1, 2, 3, 4)}}
	edges := edgesFor(t, rows)

	result, err := newTestEngine(t, 4).Cluster(5, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0, 1, 2, 3), ids(4)}, result.Groups)

	tier3 := result.Statistics.Tiers[2]
	assert.Equal(t, 4, tier3.Edges)
	assert.Equal(t, 3, tier3.Merges)
	assert.Equal(t, 1, tier3.Rejections)
	assert.Equal(t, 1, result.Statistics.NumSingleton)

	require.NotEmpty(t, result.Decisions)
	rejected := result.Decisions[3]
	assert.Equal(t, models.NewPairKey(0, 4), rejected.Edge.Key())
	assert.Equal(t, Rejected, rejected.Outcome)
	assert.Equal(t, 4, rejected.SizeA)
	assert.Equal(t, 1, rejected.SizeB)
}

func TestNewEngineRejectsBadGroupSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		opts := DefaultOptions()
		opts.MaxGroupSize = size
		engine, err := NewEngine(opts, zerolog.Nop())
		assert.Nil(t, engine)
		var cfgErr *models.InvalidConfigError
		require.True(t, errors.As(err, &cfgErr), "size %d: %v", size, err)
		assert.Equal(t, "grouping.max_group_size", cfgErr.Field)
	}
}

func TestNewEngineRejectsUnknownTieBreak(t *testing.T) {
	opts := DefaultOptions()
	opts.TieBreak = "random"
	_, err := NewEngine(opts, zerolog.Nop())
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestClusterRejectsOutOfRangeIds(t *testing.T) {
	engine := newTestEngine(t, 4)
	bad := [][]models.PriorityEdge{
		{{A: 0, B: 3, Tier: models.Tier1}},
		{{A: -1, B: 1, Tier: models.Tier1}},
		{{A: 1, B: 1, Tier: models.Tier2}},
		{{A: 0, B: 1, Tier: 7}},
	}
	for _, edges := range bad {
		_, err := engine.Cluster(3, edges)
		assert.ErrorIs(t, err, models.ErrInvariantViolation, "edges %v", edges)
	}
}

func TestClusterWithoutEdgesIsAllSingletons(t *testing.T) {
	result, err := newTestEngine(t, 4).Cluster(3, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0), ids(1), ids(2)}, result.Groups)

	empty, err := newTestEngine(t, 4).Cluster(0, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Groups)
}

func TestClusterGroupSizeOne(t *testing.T) {
	rows := []models.RequestRow{{Requester: 0, Requested: ids(1)}}
	result, err := newTestEngine(t, 1).Cluster(2, edgesFor(t, rows))
	require.NoError(t, err)
	assert.Len(t, result.Groups, 2)
}

func TestStrongTierDrainsBeforeWeakTier(t *testing.T) {
	// 0-1 is weak (tier 4) but sorts first lexicographically; 1-2 and 2-3 are tier 1.
	edges := []models.PriorityEdge{
		{A: 0, B: 1, Tier: models.Tier4},
		{A: 1, B: 2, Tier: models.Tier1},
		{A: 2, B: 3, Tier: models.Tier1},
	}
	result, err := newTestEngine(t, 3).Cluster(4, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0), ids(1, 2, 3)}, result.Groups)
}

func TestSortEdges(t *testing.T) {
	edges := []models.PriorityEdge{
		{A: 3, B: 4, Tier: models.Tier2},
		{A: 0, B: 5, Tier: models.Tier3},
		{A: 1, B: 2, Tier: models.Tier2},
		{A: 0, B: 1, Tier: models.Tier1},
	}

	lex := SortEdges(edges, Lexicographic)
	assert.Equal(t, []models.PriorityEdge{edges[3], edges[2], edges[0], edges[1]}, lex)

	input := SortEdges(edges, InputOrder)
	assert.Equal(t, []models.PriorityEdge{edges[3], edges[0], edges[2], edges[1]}, input)

	// The caller's slice keeps its order.
	assert.Equal(t, models.Tier2, edges[0].Tier)
}

func TestTieBreakChangesOutcome(t *testing.T) {
	edges := []models.PriorityEdge{
		{A: 1, B: 2, Tier: models.Tier3},
		{A: 0, B: 1, Tier: models.Tier3},
	}

	lex, err := newTestEngine(t, 2).Cluster(3, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0, 1), ids(2)}, lex.Groups)

	opts := DefaultOptions()
	opts.MaxGroupSize = 2
	opts.TieBreak = InputOrder
	engine, err := NewEngine(opts, zerolog.Nop())
	require.NoError(t, err)
	input, err := engine.Cluster(3, edges)
	require.NoError(t, err)
	assert.Equal(t, [][]models.StudentID{ids(0), ids(1, 2)}, input.Groups)
}

func TestClusterPartitionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(40)
		maxSize := 1 + rng.Intn(6)

		var rows []models.RequestRow
		for r := 0; r < n; r++ {
			row := models.RequestRow{Requester: models.StudentID(r)}
			seen := map[int]bool{r: true}
			for k := rng.Intn(5); k > 0; k-- {
				q := rng.Intn(n)
				if seen[q] {
					continue
				}
				seen[q] = true
				row.Requested = append(row.Requested, models.StudentID(q))
			}
			rows = append(rows, row)
		}

		result, err := newTestEngine(t, maxSize).Cluster(n, edgesFor(t, rows))
		require.NoError(t, err)

		covered := make(map[models.StudentID]int)
		for g, group := range result.Groups {
			require.LessOrEqual(t, len(group), maxSize, "trial %d group %d", trial, g)
			for _, id := range group {
				covered[id]++
				got, ok := result.GroupOf(id)
				require.True(t, ok)
				require.Equal(t, g, got)
			}
		}
		require.Len(t, covered, n, "trial %d", trial)
		for id, count := range covered {
			require.Equal(t, 1, count, "trial %d id %d", trial, id)
		}

		// Edges are attempted in non-decreasing tier order.
		for i := 1; i < len(result.Decisions); i++ {
			require.LessOrEqual(t, result.Decisions[i-1].Edge.Tier, result.Decisions[i].Edge.Tier)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "merged", Merged.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "already_joined", AlreadyJoined.String())
}
