package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexViews(t *testing.T) {
	idx := NewIndex([]Edge{
		{TaskID: "c", DependsOnID: "b"},
		{TaskID: "b", DependsOnID: "a"},
		{TaskID: "c", DependsOnID: "a"},
		{TaskID: "c", DependsOnID: "b"}, // repeated pair collapses
	})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"b", "a"}, idx.DependenciesOf("c"))
	assert.Equal(t, []string{"a"}, idx.DependenciesOf("b"))
	assert.Nil(t, idx.DependenciesOf("a"))
	assert.Equal(t, []string{"b", "c"}, idx.DependentsOf("a"))
	assert.Equal(t, []string{"c"}, idx.DependentsOf("b"))
	assert.Nil(t, idx.DependentsOf("c"))
	assert.Equal(t, []string{"c", "b", "a"}, idx.Tasks())

	assert.True(t, idx.HasEdge("c", "b"))
	assert.False(t, idx.HasEdge("b", "c"))
}

func TestIndexReturnsCopies(t *testing.T) {
	idx := NewIndex([]Edge{{TaskID: "b", DependsOnID: "a"}})

	deps := idx.DependenciesOf("b")
	deps[0] = "mutated"

	assert.Equal(t, []string{"a"}, idx.DependenciesOf("b"))
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex(nil)

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Tasks())
	assert.False(t, idx.HasEdge("a", "b"))
}

func TestPrerequisitesFirst(t *testing.T) {
	// a depends on b, b depends on c; d is unrelated.
	idx := NewIndex([]Edge{
		{TaskID: "a", DependsOnID: "b"},
		{TaskID: "b", DependsOnID: "c"},
	})

	assert.Equal(t, []string{"c", "b", "a", "d"}, idx.PrerequisitesFirst([]string{"a", "b", "c", "d"}))
	assert.Equal(t, []string{"d", "c", "b", "a"}, idx.PrerequisitesFirst([]string{"d", "a", "b", "c"}))
	// Ordering holds through ids that are not requested.
	assert.Equal(t, []string{"c", "a"}, idx.PrerequisitesFirst([]string{"a", "c"}))
	assert.Empty(t, idx.PrerequisitesFirst(nil))
}
