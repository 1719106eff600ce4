package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/internal/domain"
)

func sampleFragment() *domain.WorkflowFragment {
	f := domain.NewWorkflowFragment()
	scan := domain.NewOperator("op-1", "ScanSource", []string{}, []string{"output-0"})
	scan.SetProperty("tableName", "twitter")
	f.AddOperator(scan)
	f.AddOperator(domain.NewOperator("op-2", "ViewResults", []string{"input-0"}, []string{}))
	f.AddLink(domain.NewLink("L1",
		domain.PortRef{OperatorID: "op-1", PortID: "output-0"},
		domain.PortRef{OperatorID: "op-2", PortID: "input-0"}))
	f.SetPosition("op-1", domain.NewPoint(10, 20))
	return f
}

func TestYAMLParseHandWritten(t *testing.T) {
	doc := `
operators:
  - operator_id: scan
    operator_type: ScanSource
    output_ports: [output-0]
    operator_properties:
      tableName: twitter
  - operator_id: view
    operator_type: ViewResults
    input_ports: [input-0]
links:
  - id: L1
    from: scan:output-0
    to: view:input-0
positions:
  scan: {x: 100, y: 50}
`
	f, err := NewYAMLCodec().Parse(strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, f.Operators, 2)
	assert.Equal(t, "twitter", f.Operators[0].OperatorProperties["tableName"])
	assert.NotNil(t, f.Operators[1].OperatorProperties)
	require.Len(t, f.Links, 1)
	assert.Equal(t, domain.PortRef{OperatorID: "scan", PortID: "output-0"}, f.Links[0].Source)
	assert.Equal(t, domain.PortRef{OperatorID: "view", PortID: "input-0"}, f.Links[0].Target)
	assert.Equal(t, domain.NewPoint(100, 50), f.Positions["scan"])
}

func TestYAMLParseBadPortRef(t *testing.T) {
	tests := []string{"scan", "scan:", ":port"}
	for _, ref := range tests {
		doc := "links:\n  - id: L\n    from: '" + ref + "'\n    to: view:input-0\n"
		_, err := NewYAMLCodec().Parse(strings.NewReader(doc))
		assert.ErrorIs(t, err, domain.ErrInvalidEndpoint, ref)
	}
}

func TestParsePortRefKeepsColonsInOperatorID(t *testing.T) {
	ref, err := parsePortRef("ns:op:output-0")

	require.NoError(t, err)
	assert.Equal(t, domain.PortRef{OperatorID: "ns:op", PortID: "output-0"}, ref)
}

func TestExportThenParse(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Export(sampleFragment(), &buf))
			got, err := c.Parse(&buf)

			require.NoError(t, err)
			want := sampleFragment()
			assert.Equal(t, want.Links, got.Links)
			assert.Equal(t, want.Positions, got.Positions)
			require.Len(t, got.Operators, 2)
			assert.Equal(t, "twitter", got.Operators[0].OperatorProperties["tableName"])
		})
	}
}

func TestForFormatUnknown(t *testing.T) {
	_, err := ForFormat("ansible")

	assert.Error(t, err)
}

func TestJSONParseError(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader("{"))

	assert.Error(t, err)
}
