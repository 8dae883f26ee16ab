package trace

// Level controls the verbosity of journey tracing.
type Level string

const (
	// LevelNone disables tracing (zero overhead).
	LevelNone Level = "none"
	// LevelJourneys captures every resource grant and journey completion.
	LevelJourneys Level = "journeys"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:     true,
	LevelJourneys: true,
	"":            true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is a recognized trace level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// JourneyTrace collects per-journey records during a simulation run.
type JourneyTrace struct {
	Level       Level
	Grants      []GrantRecord
	Completions []CompletionRecord
}

// NewJourneyTrace creates a JourneyTrace ready for recording.
func NewJourneyTrace(level Level) *JourneyTrace {
	return &JourneyTrace{
		Level:       level,
		Grants:      make([]GrantRecord, 0),
		Completions: make([]CompletionRecord, 0),
	}
}

// Enabled reports whether records should be collected at all.
func (jt *JourneyTrace) Enabled() bool {
	return jt != nil && jt.Level == LevelJourneys
}

// RecordGrant appends a resource-grant record.
func (jt *JourneyTrace) RecordGrant(record GrantRecord) {
	jt.Grants = append(jt.Grants, record)
}

// RecordCompletion appends a journey-completion record.
func (jt *JourneyTrace) RecordCompletion(record CompletionRecord) {
	jt.Completions = append(jt.Completions, record)
}
