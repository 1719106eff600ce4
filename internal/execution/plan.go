// Package execution turns the workflow into a logical plan and submits it to
// the execution backend.
package execution

import "flowcanvas/internal/domain"

// GraphReader is the read side of the workflow graph
type GraphReader interface {
	GetOperators() []domain.Operator
	GetLinks() []domain.Link
}

// LogicalPlanRequest flattens the graph into the backend request body.
// Operators lose their ports and carry their properties inline; links
// missing either end are dropped.
func LogicalPlanRequest(g GraphReader) domain.LogicalPlan {
	plan := domain.LogicalPlan{
		Operators: []map[string]any{},
		Links:     []domain.LogicalLink{},
	}

	for _, op := range g.GetOperators() {
		entry := make(map[string]any, len(op.OperatorProperties)+2)
		for k, v := range op.OperatorProperties {
			entry[k] = v
		}
		// id and type win over properties that happen to share the key
		entry["operatorID"] = op.OperatorID
		entry["operatorType"] = op.OperatorType
		plan.Operators = append(plan.Operators, entry)
	}

	for _, l := range g.GetLinks() {
		if l.Source.OperatorID == "" || l.Target.OperatorID == "" {
			continue
		}
		plan.Links = append(plan.Links, domain.LogicalLink{
			Origin:      l.Source.OperatorID,
			Destination: l.Target.OperatorID,
		})
	}
	return plan
}
