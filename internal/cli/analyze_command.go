package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"voxbridge.dev/internal/journal"
)

// newAnalyzeCommand creates the analyze command with subcommands
func newAnalyzeCommand() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze recorded player activity",
		Long:  "Analyze the activity journal to understand playback patterns, session history, and transition frequencies.",
	}

	analyzeCmd.AddCommand(newAnalyzeRecentCommand())
	analyzeCmd.AddCommand(newAnalyzeStatsCommand())

	return analyzeCmd
}

// analyzeFlags holds the filter flags shared by analyze subcommands
type analyzeFlags struct {
	days     int
	preset   string
	since    string
	session  string
	activity string
	limit    int
	jsonOut  bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.days, "days", 7, "Number of days to analyze (0 = all time)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Date preset (today, yesterday, last-week, this-month, all-time)")
	cmd.Flags().StringVar(&f.since, "since", "", "Natural language start time (e.g. '2 hours ago')")
	cmd.Flags().StringVar(&f.session, "session", "", "Filter by session ID")
	cmd.Flags().StringVar(&f.activity, "activity", "", "Filter by activity (PLAYING, STOPPED, PAUSED, ...)")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "Maximum number of results to show")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output as JSON")
}

// filter converts the flags to a journal query filter
func (f *analyzeFlags) filter() (journal.QueryFilter, error) {
	filter := journal.QueryFilter{
		Days:       f.days,
		DatePreset: f.preset,
		SessionID:  f.session,
		Activity:   f.activity,
		Limit:      f.limit,
	}

	if f.since != "" {
		start, err := journal.ParseNaturalDate(f.since)
		if err != nil {
			return filter, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.StartTime = &start
		filter.Days = 0
		filter.DatePreset = ""
	}

	return filter, nil
}

// newAnalyzeRecentCommand creates the analyze recent subcommand
func newAnalyzeRecentCommand() *cobra.Command {
	flags := &analyzeFlags{}

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent player activity transitions",
		Long: `Show recent player activity transitions, newest first.

Examples:
  voxbridge analyze recent                       # Last 7 days
  voxbridge analyze recent --days 30             # Last 30 days
  voxbridge analyze recent --preset today        # Today only
  voxbridge analyze recent --since "2 hours ago" # Natural language range
  voxbridge analyze recent --session abc123      # Single session
  voxbridge analyze recent --activity PLAYING    # Only PLAYING transitions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeRecent(cmd, flags)
		},
	}

	flags.register(recentCmd)
	return recentCmd
}

// runAnalyzeRecent executes the analyze recent command
func runAnalyzeRecent(cmd *cobra.Command, flags *analyzeFlags) error {
	slog.Debug("running analyze recent command",
		"days", flags.days, "preset", flags.preset, "session", flags.session,
		"activity", flags.activity, "limit", flags.limit)

	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cli.initializeJournal()
	if cli.journalDB == nil {
		return fmt.Errorf("activity journal is not enabled or database is not available")
	}

	filter, err := flags.filter()
	if err != nil {
		return err
	}

	events, err := journal.GetRecentEvents(cli.journalDB, filter)
	if err != nil {
		return fmt.Errorf("failed to query recent events: %w", err)
	}

	if flags.jsonOut {
		return writeJSON(cmd, events)
	}

	if len(events) == 0 {
		cmd.Println("No activity recorded for the selected range.")
		return nil
	}

	cmd.Printf("%-20s %-12s %-16s %-16s %10s %10s\n",
		"TIME", "SESSION", "FROM", "TO", "POS(MS)", "DUR(MS)")
	for _, ev := range events {
		ts := time.Unix(ev.Timestamp, 0).Format("2006-01-02 15:04:05")
		cmd.Printf("%-20s %-12s %-16s %-16s %10d %10d\n",
			ts, truncate(ev.SessionID, 12), ev.PreviousActivity, ev.Activity,
			ev.PositionMs, ev.DurationMs)
	}

	return nil
}

// newAnalyzeStatsCommand creates the analyze stats subcommand
func newAnalyzeStatsCommand() *cobra.Command {
	flags := &analyzeFlags{}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show activity transition statistics",
		Long: `Show aggregate statistics over recorded activity transitions.

Examples:
  voxbridge analyze stats                   # Last 7 days
  voxbridge analyze stats --preset month    # This month
  voxbridge analyze stats --session abc123  # Single session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeStats(cmd, flags)
		},
	}

	flags.register(statsCmd)
	return statsCmd
}

// runAnalyzeStats executes the analyze stats command
func runAnalyzeStats(cmd *cobra.Command, flags *analyzeFlags) error {
	slog.Debug("running analyze stats command",
		"days", flags.days, "preset", flags.preset, "session", flags.session)

	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cli.initializeJournal()
	if cli.journalDB == nil {
		return fmt.Errorf("activity journal is not enabled or database is not available")
	}

	filter, err := flags.filter()
	if err != nil {
		return err
	}

	stats, err := journal.GetActivityStats(cli.journalDB, filter)
	if err != nil {
		return fmt.Errorf("failed to query activity stats: %w", err)
	}

	summary, err := journal.GetJournalSummary(cli.journalDB, filter)
	if err != nil {
		return fmt.Errorf("failed to query journal summary: %w", err)
	}

	if flags.jsonOut {
		return writeJSON(cmd, map[string]interface{}{
			"summary":    summary,
			"activities": stats,
		})
	}

	cmd.Printf("Total transitions: %v\n", summary["total_transitions"])
	cmd.Printf("Unique sessions:   %v\n", summary["unique_sessions"])
	cmd.Printf("Buffer stalls:     %v\n", summary["stall_count"])
	cmd.Println()

	if len(stats) == 0 {
		cmd.Println("No activity recorded for the selected range.")
		return nil
	}

	cmd.Printf("%-16s %8s\n", "ACTIVITY", "COUNT")
	for _, stat := range stats {
		cmd.Printf("%-16s %8d\n", stat.Activity, stat.Count)
	}

	return nil
}

// writeJSON marshals v with indentation to the command's stdout
func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// truncate shortens s to at most n characters
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
