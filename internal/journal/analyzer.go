package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
)

// EventRecord represents a single recorded activity transition
type EventRecord struct {
	ID               int64  `json:"id"`
	Timestamp        int64  `json:"timestamp"`
	SessionID        string `json:"session_id"`
	Activity         string `json:"activity"`
	PreviousActivity string `json:"previous_activity"`
	PositionMs       int64  `json:"position_ms"`
	DurationMs       int64  `json:"duration_ms"`
}

// ActivityStat aggregates transition counts for one activity
type ActivityStat struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

// GetRecentEvents queries the journal for recent activity transitions,
// newest first, honoring the filter's time, session, and activity constraints
func GetRecentEvents(db *sql.DB, filter QueryFilter) ([]EventRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "timestamp", "session_id", "activity", "previous_activity", "position_ms", "duration_ms")
	sb.From("activity_events")
	filter.applyConditions(sb, time.Now())
	// Timestamps are second-granular; the rowid breaks ties between
	// transitions recorded within the same second
	sb.OrderBy("timestamp DESC", "id DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	sb.Limit(limit)
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}

	query, args := sb.Build()
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity events: %w", err)
	}
	defer rows.Close()

	var results []EventRecord
	for rows.Next() {
		var rec EventRecord
		err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.SessionID, &rec.Activity,
			&rec.PreviousActivity, &rec.PositionMs, &rec.DurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event row: %w", err)
		}
		results = append(results, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity event rows: %w", err)
	}

	return results, nil
}

// GetActivityStats returns transition counts grouped by activity, most frequent first
func GetActivityStats(db *sql.DB, filter QueryFilter) ([]ActivityStat, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("activity", "COUNT(*) AS transition_count")
	sb.From("activity_events")
	filter.applyConditions(sb, time.Now())
	sb.GroupBy("activity")
	sb.OrderBy("transition_count").Desc()

	query, args := sb.Build()
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity stats: %w", err)
	}
	defer rows.Close()

	var results []ActivityStat
	for rows.Next() {
		var stat ActivityStat
		if err := rows.Scan(&stat.Activity, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity stat row: %w", err)
		}
		results = append(results, stat)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity stat rows: %w", err)
	}

	return results, nil
}

// GetJournalSummary returns overall counts for the filtered range
func GetJournalSummary(db *sql.DB, filter QueryFilter) (map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"COUNT(*) AS total_transitions",
		"COUNT(DISTINCT session_id) AS unique_sessions",
		"COALESCE(SUM(CASE WHEN activity = 'BUFFER_UNDERRUN' THEN 1 ELSE 0 END), 0) AS stall_count")
	sb.From("activity_events")
	filter.applyConditions(sb, time.Now())

	query, args := sb.Build()

	var totalTransitions, uniqueSessions, stallCount int
	err := db.QueryRow(query, args...).Scan(&totalTransitions, &uniqueSessions, &stallCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal summary: %w", err)
	}

	summary := map[string]interface{}{
		"total_transitions": totalTransitions,
		"unique_sessions":   uniqueSessions,
		"stall_count":       stallCount,
		"query_days":        filter.Days,
		"query_session":     filter.SessionID,
		"query_activity":    filter.Activity,
	}

	return summary, nil
}
