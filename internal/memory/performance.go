package memory

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
)

// RecordPerformance folds one call into the operation's aggregate and
// appends it to the success or error pattern log.
func (s *Store) RecordPerformance(operation string, duration time.Duration, success bool, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.performance[operation]
	if !ok {
		rec = &domain.PerformanceRecord{}
		s.performance[operation] = rec
	}
	rec.TotalCalls++
	rec.TotalDuration += duration
	if success {
		rec.SuccessCount++
	} else {
		rec.FailureCount++
	}
	rec.AvgDuration = rec.TotalDuration / time.Duration(rec.TotalCalls)
	rec.SuccessRate = float64(rec.SuccessCount) / float64(rec.TotalCalls)

	pattern := domain.PatternRecord{
		Operation: operation,
		Duration:  duration,
		Timestamp: s.now(),
		Metadata:  maps.Clone(metadata),
	}
	if success {
		s.successPatterns = append(s.successPatterns, pattern)
	} else {
		s.errorPatterns = append(s.errorPatterns, pattern)
	}
}

// PerformanceInsights returns every operation's aggregate with the most
// recent error and success records.
func (s *Store) PerformanceInsights() domain.PerformanceInsights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := make(map[string]domain.PerformanceRecord, len(s.performance))
	for name, rec := range s.performance {
		ops[name] = *rec
	}
	return domain.PerformanceInsights{
		Operations:      ops,
		TotalOperations: len(ops),
		RecentErrors:    tail(s.errorPatterns, constants.InsightSliceSize),
		RecentSuccesses: tail(s.successPatterns, constants.InsightSliceSize),
	}
}

// OperationInsights returns the aggregate for one operation.
func (s *Store) OperationInsights(operation string) (domain.PerformanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.performance[operation]
	if !ok {
		return domain.PerformanceRecord{}, false
	}
	return *rec, true
}

func tail(records []domain.PatternRecord, n int) []domain.PatternRecord {
	start := max(len(records)-n, 0)
	out := make([]domain.PatternRecord, len(records)-start)
	copy(out, records[start:])
	return out
}

// LearnFromPatterns tallies failures by their error_type metadata, derives
// duration statistics per operation from successes, and recommends focusing
// on the most frequent error type. Ties go to the alphabetically first type.
func (s *Store) LearnFromPatterns() domain.LearningInsights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insights := domain.LearningInsights{
		CommonErrors:    make(map[string]int),
		SuccessFactors:  make(map[string]domain.DurationStats),
		Recommendations: []string{},
	}

	for _, p := range s.errorPatterns {
		insights.CommonErrors[errorType(p.Metadata)]++
	}

	for _, p := range s.successPatterns {
		stats, ok := insights.SuccessFactors[p.Operation]
		if !ok {
			stats = domain.DurationStats{MinDuration: p.Duration, MaxDuration: p.Duration}
		}
		stats.MinDuration = min(stats.MinDuration, p.Duration)
		stats.MaxDuration = max(stats.MaxDuration, p.Duration)
		// AvgDuration holds the running total until the pass below.
		stats.AvgDuration += p.Duration
		stats.Count++
		insights.SuccessFactors[p.Operation] = stats
	}
	for op, stats := range insights.SuccessFactors {
		stats.AvgDuration /= time.Duration(stats.Count)
		insights.SuccessFactors[op] = stats
	}

	if top, n := mostFrequent(insights.CommonErrors); n > 0 {
		insights.Recommendations = append(insights.Recommendations,
			fmt.Sprintf("Focus on reducing '%s' errors (occurred %d times)", top, n))
	}
	return insights
}

func errorType(metadata map[string]any) string {
	if v, ok := metadata[constants.MetaErrorType]; ok {
		if s, isString := v.(string); isString && s != "" {
			return s
		}
		return fmt.Sprint(v)
	}
	return constants.UnknownErrorType
}

func mostFrequent(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var top string
	var best int
	for _, k := range keys {
		if counts[k] > best {
			top, best = k, counts[k]
		}
	}
	return top, best
}
