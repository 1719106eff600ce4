package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOperator(t *testing.T) {
	op := NewOperator("op-1", "KeywordMatcher", []string{"input-0"}, []string{"output-0"})

	assert.Equal(t, "op-1", op.OperatorID)
	assert.NotNil(t, op.OperatorProperties)
	assert.True(t, op.HasInputPort("input-0"))
	assert.False(t, op.HasInputPort("output-0"))
	assert.True(t, op.HasOutputPort("output-0"))
	assert.False(t, op.HasOutputPort("input-0"))
}

func TestOperatorProperties(t *testing.T) {
	var op Operator

	op.SetProperty("query", "zika")

	assert.Equal(t, map[string]any{"query": "zika"}, op.OperatorProperties)
}

func TestOperatorCloneDoesNotAlias(t *testing.T) {
	op := NewOperator("op-1", "Join", []string{"input-0", "input-1"}, []string{"output-0"})
	op.SetProperty("attribute", "id")

	c := op.Clone()
	c.SetProperty("attribute", "name")
	c.InputPorts[0] = "changed"

	assert.Equal(t, "id", op.OperatorProperties["attribute"])
	assert.Equal(t, "input-0", op.InputPorts[0])
}

func TestCloneProperties(t *testing.T) {
	assert.NotNil(t, CloneProperties(nil))
	assert.Equal(t, map[string]any{"a": 1}, CloneProperties(map[string]any{"a": 1}))
}
