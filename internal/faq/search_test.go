package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchShortQueryReturnsNothing(t *testing.T) {
	assert.Nil(t, Search("fa"))
	assert.Nil(t, Search("  x "))
}

func TestSearchErrorCode(t *testing.T) {
	results := Search("429")
	require.NotEmpty(t, results)
	assert.Equal(t, 803, results[0].Item.ID)
}

func TestSearchRobotBonusRanksAgentAnswersFirst(t *testing.T) {
	results := Search("robot math validation")
	require.NotEmpty(t, results)
	assert.Equal(t, CategoryRobot, results[0].Item.Category)
	assert.Equal(t, 802, results[0].Item.ID)
}

func TestSearchScoresPerQueryWord(t *testing.T) {
	// "math" equals the keyword "math" and is contained in "math-guard";
	// one query word earns one keyword hit, not one per keyword. With the
	// question hit (15) and the answer hit (2) the total is exactly 42.
	results := Search("math")
	require.Len(t, results, 1)
	assert.Equal(t, 802, results[0].Item.ID)
	assert.Equal(t, 42, results[0].Score)
}

func TestSearchFiltersWeakMatches(t *testing.T) {
	// "pln" appears in answer bodies only, which scores below the threshold.
	assert.Empty(t, Search("pln"))
}

func TestSearchSortedByScore(t *testing.T) {
	results := Search("deadline 2026")
	require.GreaterOrEqual(t, len(results), 2)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}
