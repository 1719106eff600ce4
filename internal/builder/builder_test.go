package builder

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/domain"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Defaults())
	require.NoError(t, err)
	return c
}

func TestNextAvailableIDIsFresh(t *testing.T) {
	b := New(nil, newCatalog(t))

	first := b.NextAvailableID()
	second := b.NextAvailableID()

	assert.Equal(t, "operator-1", first)
	assert.Equal(t, "operator-2", second)
	assert.NotEqual(t, first, second)
}

func TestSequenceGeneratorIsConcurrencySafe(t *testing.T) {
	g := NewSequenceGenerator("op")
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 400)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")

	assert.Equal(t, "a", g.Next())
	assert.Equal(t, "b", g.Next())
	assert.Equal(t, "fixed-1", g.Next())
}

func TestNewOperatorUsesCatalogPorts(t *testing.T) {
	b := New(NewFixedGenerator("j"), newCatalog(t))

	op, err := b.NewOperator("Join")

	require.NoError(t, err)
	assert.Equal(t, "j", op.OperatorID)
	assert.Equal(t, "Join", op.OperatorType)
	assert.Equal(t, []string{"input-0", "input-1"}, op.InputPorts)
	assert.Equal(t, []string{"output-0"}, op.OutputPorts)
	assert.NotNil(t, op.OperatorProperties)
	assert.Empty(t, op.OperatorProperties)
}

func TestNewOperatorReadsCurrentSnapshot(t *testing.T) {
	c := newCatalog(t)
	b := New(nil, c)

	require.NoError(t, c.Replace([]catalog.OperatorSchema{
		{OperatorType: "Join", UserFriendlyName: "Join", NumInputPorts: 3, NumOutputPorts: 2},
	}))
	op, err := b.NewOperator("Join")

	require.NoError(t, err)
	assert.Len(t, op.InputPorts, 3)
	assert.Len(t, op.OutputPorts, 2)
}

func TestNewOperatorUnknownType(t *testing.T) {
	b := New(nil, newCatalog(t))

	_, err := b.NewOperator("Teleport")

	assert.ErrorIs(t, err, domain.ErrUnknownOperatorType)
}

func TestTwoOperatorsOfSameTypeGetDistinctIDs(t *testing.T) {
	b := New(nil, newCatalog(t))

	a, err := b.NewOperator("ScanSource")
	require.NoError(t, err)
	c, err := b.NewOperator("ScanSource")
	require.NoError(t, err)

	assert.NotEqual(t, a.OperatorID, c.OperatorID)
}
