package catalog

// Defaults returns the built-in operator palette
func Defaults() []OperatorSchema {
	return []OperatorSchema{
		{OperatorType: "ScanSource", UserFriendlyName: "Source: Scan", OperatorGroupName: "Source",
			Description: "Read records from a table", NumInputPorts: 0, NumOutputPorts: 1},
		{OperatorType: "KeywordMatcher", UserFriendlyName: "Keyword Search", OperatorGroupName: "Search",
			Description: "Search records for keywords", NumInputPorts: 1, NumOutputPorts: 1},
		{OperatorType: "RegexMatcher", UserFriendlyName: "Regular Expression", OperatorGroupName: "Search",
			Description: "Search records with a regular expression", NumInputPorts: 1, NumOutputPorts: 1},
		{OperatorType: "DictionaryMatcher", UserFriendlyName: "Dictionary Search", OperatorGroupName: "Search",
			Description: "Search records for dictionary entries", NumInputPorts: 1, NumOutputPorts: 1},
		{OperatorType: "NlpEntity", UserFriendlyName: "Entity Recognition", OperatorGroupName: "Analysis",
			Description: "Tag named entities", NumInputPorts: 1, NumOutputPorts: 1},
		{OperatorType: "Join", UserFriendlyName: "Join", OperatorGroupName: "Join",
			Description: "Join two inputs on a key", NumInputPorts: 2, NumOutputPorts: 1},
		{OperatorType: "ViewResults", UserFriendlyName: "View Results", OperatorGroupName: "View Results",
			Description: "Show results in the result panel", NumInputPorts: 1, NumOutputPorts: 0},
	}
}
