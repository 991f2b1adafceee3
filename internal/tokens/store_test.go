package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionCollapsesDuplicates(t *testing.T) {
	union := Union([]string{"t1", "t2"}, []string{"t2", "t3"}, []string{"t1"})

	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, union)
}

func TestUnionEmptySets(t *testing.T) {
	assert.Empty(t, Union())
	assert.Empty(t, Union(nil, nil))
	assert.ElementsMatch(t, []string{"t1"}, Union(nil, []string{"t1"}, nil))
}

func TestUnionOrderIrrelevant(t *testing.T) {
	a := Union([]string{"x"}, []string{"y", "z"})
	b := Union([]string{"y", "z"}, []string{"x"})

	assert.ElementsMatch(t, a, b)
}
