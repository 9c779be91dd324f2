package domain

import "time"

// ConversationEntry is one message in the append-only conversation log.
type ConversationEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
}

// CodeArtifact is the latest content stored for a path. Writes replace it.
type CodeArtifact struct {
	Content     string    `json:"content"`
	Language    string    `json:"language"`
	Checksum    string    `json:"checksum"`
	LastUpdated time.Time `json:"last_updated"`
}

// SemanticEntry is one tagged piece of content under a key.
type SemanticEntry struct {
	Content   string    `json:"content"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags"`
}

// SemanticMatch is a scored semantic entry returned by a query.
type SemanticMatch struct {
	Key   string        `json:"key"`
	Entry SemanticEntry `json:"entry"`
	Score int           `json:"score"`
}

// ProjectStateEntry is a value stored under a project state key.
type ProjectStateEntry struct {
	Value       any       `json:"value"`
	LastUpdated time.Time `json:"last_updated"`
}

// LearningRecord is one remembered attempt at a scenario.
type LearningRecord struct {
	Solution  string    `json:"solution"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// PerformanceRecord aggregates every call recorded for one operation.
type PerformanceRecord struct {
	TotalCalls    int           `json:"total_calls"`
	TotalDuration time.Duration `json:"total_duration"`
	SuccessCount  int           `json:"success_count"`
	FailureCount  int           `json:"failure_count"`
	AvgDuration   time.Duration `json:"avg_duration"`
	SuccessRate   float64       `json:"success_rate"`
}

// PatternRecord is one entry in the error or success pattern log.
type PatternRecord struct {
	Operation string         `json:"operation"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PerformanceInsights is the answer of a performance insight query.
type PerformanceInsights struct {
	Operations      map[string]PerformanceRecord `json:"operations"`
	TotalOperations int                          `json:"total_operations"`
	RecentErrors    []PatternRecord              `json:"recent_errors"`
	RecentSuccesses []PatternRecord              `json:"recent_successes"`
}

// DurationStats summarizes successful durations of one operation.
type DurationStats struct {
	Count       int           `json:"count"`
	AvgDuration time.Duration `json:"avg_duration"`
	MinDuration time.Duration `json:"min_duration"`
	MaxDuration time.Duration `json:"max_duration"`
}

// LearningInsights is what pattern learning derives from the logs.
type LearningInsights struct {
	CommonErrors    map[string]int           `json:"common_errors"`
	SuccessFactors  map[string]DurationStats `json:"success_factors"`
	Recommendations []string                 `json:"recommendations"`
}

// ProjectSummary is a compact description of what a context store holds.
type ProjectSummary struct {
	Project             string    `json:"project"`
	ConversationEntries int       `json:"conversation_entries"`
	Artifacts           int       `json:"artifacts"`
	Languages           []string  `json:"languages"`
	ProjectStateKeys    []string  `json:"project_state_keys"`
	LearningScenarios   int       `json:"learning_scenarios"`
	LastActivity        time.Time `json:"last_activity,omitzero"`
}

// Snapshot is the persisted document for one project.
type Snapshot struct {
	ConversationHistory []ConversationEntry          `json:"conversation_history"`
	CodeContext         map[string]CodeArtifact      `json:"code_context"`
	ProjectState        map[string]ProjectStateEntry `json:"project_state"`
	LearningMemory      map[string][]LearningRecord  `json:"learning_memory"`
}
