package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/internal/domain"
)

type captured struct {
	events []string
	links  []LinkCell
}

func capture(a *Adapter) *captured {
	c := &captured{}
	a.ElementAdded().Subscribe(func(e ElementCell) { c.events = append(c.events, "element+ "+e.ID) })
	a.ElementDeleted().Subscribe(func(e ElementCell) { c.events = append(c.events, "element- "+e.ID) })
	a.LinkAdded().Subscribe(func(l LinkCell) {
		c.events = append(c.events, "link+ "+l.ID)
		c.links = append(c.links, l)
	})
	a.LinkDeleted().Subscribe(func(l LinkCell) {
		c.events = append(c.events, "link- "+l.ID)
		c.links = append(c.links, l)
	})
	a.LinkChanged().Subscribe(func(l LinkCell) {
		c.events = append(c.events, "link~ "+l.ID)
		c.links = append(c.links, l)
	})
	return c
}

func newTestAdapter(t *testing.T) (*MemorySurface, *Adapter) {
	t.Helper()
	s := NewMemorySurface()
	a := NewAdapter(s, nil)
	t.Cleanup(a.Close)
	return s, a
}

func operator(id string) domain.Operator {
	return domain.NewOperator(id, "Filter", []string{"input-0"}, []string{"output-0"})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		link LinkCell
		want Completeness
	}{
		{"both ports", LinkCell{Source: AtPort("1", "output-0"), Target: AtPort("2", "input-0")}, Complete},
		{"target on point", LinkCell{Source: AtPort("1", "output-0"), Target: AtPoint(10, 10)}, Incomplete},
		{"source on point", LinkCell{Source: AtPoint(0, 0), Target: AtPort("2", "input-0")}, Incomplete},
		{"both on points", LinkCell{Source: AtPoint(0, 0), Target: AtPoint(1, 1)}, Incomplete},
		{"empty endpoints", LinkCell{}, Incomplete},
		{"port without id", LinkCell{Source: AtPort("1", ""), Target: AtPort("2", "input-0")}, Incomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.link))
			_, ok := tt.link.Link()
			assert.Equal(t, tt.want == Complete, ok)
		})
	}
}

func TestLinkCellToLogicalLink(t *testing.T) {
	cell := LinkCell{ID: "L1", Source: AtPort("1", "output-0"), Target: AtPort("2", "input-0")}

	link, ok := cell.Link()

	require.True(t, ok)
	assert.Equal(t, domain.NewLink("L1",
		domain.PortRef{OperatorID: "1", PortID: "output-0"},
		domain.PortRef{OperatorID: "2", PortID: "input-0"}), link)
}

func TestAdapterMirrorsLogicalMutations(t *testing.T) {
	_, a := newTestAdapter(t)
	c := capture(a)

	require.NoError(t, a.AddElement(operator("1"), domain.NewPoint(10, 20)))
	require.NoError(t, a.AddElement(operator("2"), domain.NewPoint(200, 20)))
	require.NoError(t, a.AddLink(domain.NewLink("L1",
		domain.PortRef{OperatorID: "1", PortID: "output-0"},
		domain.PortRef{OperatorID: "2", PortID: "input-0"})))

	e, ok := a.Element("1")
	require.True(t, ok)
	assert.Equal(t, domain.NewPoint(10, 20), e.Position)
	assert.Equal(t, "Filter", e.OperatorType)

	l, ok := a.Link("L1")
	require.True(t, ok)
	assert.Equal(t, Complete, Classify(l))
	assert.Equal(t, []string{"element+ 1", "element+ 2", "link+ L1"}, c.events)
}

func TestAdapterAddLinkToMissingElementFails(t *testing.T) {
	_, a := newTestAdapter(t)

	err := a.AddLink(domain.NewLink("L1",
		domain.PortRef{OperatorID: "1", PortID: "output-0"},
		domain.PortRef{OperatorID: "2", PortID: "input-0"}))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, a.HasCell("L1"))
}

func TestRemoveElementCascadesLinksFirst(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	require.NoError(t, a.AddElement(operator("2"), domain.Point{}))
	require.NoError(t, a.AddElement(operator("3"), domain.Point{}))
	require.NoError(t, s.AddLink("L1", AtPort("1", "output-0"), AtPort("2", "input-0")))
	require.NoError(t, s.AddLink("L2", AtPort("2", "output-0"), AtPort("3", "input-0")))
	c := capture(a)

	assert.True(t, a.RemoveCell("2"))

	assert.Equal(t, []string{"link- L1", "link- L2", "element- 2"}, c.events)
	assert.False(t, a.HasCell("L1"))
	assert.False(t, a.HasCell("L2"))
	assert.True(t, a.HasCell("1"))
}

func TestRemoveAbsentCellIsNoop(t *testing.T) {
	_, a := newTestAdapter(t)
	c := capture(a)

	assert.False(t, a.RemoveCell("missing"))
	assert.Empty(t, c.events)
}

func TestLinkChangeTracksCompleteness(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	require.NoError(t, a.AddElement(operator("2"), domain.Point{}))
	c := capture(a)

	id, err := s.DrawLink(AtPort("1", "output-0"), AtPoint(50, 50))
	require.NoError(t, err)
	require.NoError(t, s.SetLinkEndpoint(id, RoleTarget, AtPort("2", "input-0")))
	require.NoError(t, s.DetachLinkEnd(id, RoleTarget, domain.NewPoint(70, 70)))
	require.NoError(t, s.DeleteCell(id))

	require.Len(t, c.links, 4)
	assert.Equal(t, Incomplete, Classify(c.links[0]))
	assert.False(t, c.links[0].EverComplete)
	assert.Equal(t, Complete, Classify(c.links[1]))
	assert.True(t, c.links[1].EverComplete)
	assert.Equal(t, Incomplete, Classify(c.links[2]))
	assert.True(t, c.links[2].EverComplete)
	assert.True(t, c.links[3].EverComplete, "delete must report the link was once attached")
	assert.Equal(t, []string{"link+ " + id, "link~ " + id, "link~ " + id, "link- " + id}, c.events)
}

func TestNeverCompleteLinkDeletion(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	c := capture(a)

	id, err := s.DrawLink(AtPort("1", "output-0"), AtPoint(5, 5))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "link-"))
	require.NoError(t, s.DeleteCell(id))

	require.Len(t, c.links, 2)
	assert.False(t, c.links[1].EverComplete)
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	c := capture(a)

	id, err := s.DrawLink(AtPort("1", "output-0"), AtPoint(5, 5))
	require.NoError(t, err)
	require.NoError(t, s.DetachLinkEnd(id, RoleTarget, domain.NewPoint(9, 9)))

	assert.Equal(t, 5.0, c.links[0].Target.Point.X)
	assert.Equal(t, 9.0, c.links[1].Target.Point.X)
}

func TestMoveElementIsNotALinkEvent(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	c := capture(a)

	require.NoError(t, s.MoveElement("1", domain.NewPoint(3, 4)))

	assert.Empty(t, c.events)
	e, _ := a.Element("1")
	assert.Equal(t, domain.NewPoint(3, 4), e.Position)
}

func TestElementsAndLinksListing(t *testing.T) {
	s, a := newTestAdapter(t)
	require.NoError(t, a.AddElement(operator("1"), domain.Point{}))
	require.NoError(t, a.AddElement(operator("2"), domain.Point{}))
	_, err := s.DrawLink(AtPort("1", "output-0"), AtPort("2", "input-0"))
	require.NoError(t, err)

	assert.Len(t, a.Elements(), 2)
	links := a.Links()
	require.Len(t, links, 1)
	assert.True(t, links[0].EverComplete)
}

func TestSurfaceRejectsBadEndpoints(t *testing.T) {
	s, _ := newTestAdapter(t)

	_, err := s.DrawLink(Endpoint{}, AtPoint(1, 1))
	assert.Error(t, err)

	err = s.SetLinkEndpoint("missing", RoleTarget, AtPoint(1, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
