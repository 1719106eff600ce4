package domain

// LogicalPlan is the request body accepted by the execution backend.
// Each operator is flattened to its id, its type and its properties.
type LogicalPlan struct {
	Operators []map[string]any `json:"operators"`
	Links     []LogicalLink    `json:"links"`
}

// LogicalLink connects two operators in a LogicalPlan. Port ids are not part of the plan.
type LogicalLink struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}
