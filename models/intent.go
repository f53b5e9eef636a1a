package models

// IntentKind identifies which of the supported query shapes was parsed.
type IntentKind int

const (
	IntentAnalyze IntentKind = iota + 1
	IntentCompare
)

func (k IntentKind) String() string {
	switch k {
	case IntentAnalyze:
		return "analyze"
	case IntentCompare:
		return "compare"
	default:
		return "unknown"
	}
}

// Intent is the typed form of a user query. Area is used by Analyze,
// Area1 and Area2 by Compare. All areas are lower-cased and trimmed.
type Intent struct {
	Kind  IntentKind
	Area  string
	Area1 string
	Area2 string
}
