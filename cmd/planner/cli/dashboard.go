package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/homeplanner/homeplanner/internal/aggregator"
	"github.com/homeplanner/homeplanner/internal/dashboard"
	"github.com/homeplanner/homeplanner/internal/report"
	"github.com/homeplanner/homeplanner/internal/source"
)

var (
	dashboardWindow string
	dashboardJSON   bool

	watchAPI      string
	watchToken    string
	watchWindow   string
	watchInterval time.Duration
	watchTZ       string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the household dashboard",
	Long: `Show the dashboard computed by the server you are signed in to.

Examples:
  planner dashboard
  planner dashboard --window daily
  planner dashboard --json | jq .workload`,
	RunE: runDashboard,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute the dashboard locally against the data API",
	Long: `Read tasks, reminders, knowledge and the team roster straight from the
planner data API and reprint the dashboard every interval. A refresh that is
overtaken by a newer one is dropped.

The data API token comes from --token, then PLANNER_API_TOKEN, then the
stored session token.

Examples:
  planner watch --api http://localhost:8000
  planner watch --api http://localhost:8000 --window daily --interval 10s --tz America/Chicago`,
	RunE: runWatch,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardWindow, "window", "weekly", "Workload window: daily or weekly")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Print the raw JSON view")

	watchCmd.Flags().StringVar(&watchAPI, "api", "http://localhost:8000", "Planner data API base URL")
	watchCmd.Flags().StringVar(&watchToken, "token", "", "Bearer token for the data API")
	watchCmd.Flags().StringVar(&watchWindow, "window", "weekly", "Workload window: daily or weekly")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Refresh interval")
	watchCmd.Flags().StringVar(&watchTZ, "tz", "", "Time zone for calendar dates (default: local)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	w, err := dashboard.ParseWindow(dashboardWindow)
	if err != nil {
		return err
	}

	client, err := NewClient()
	if err != nil {
		return err
	}

	view, err := client.Dashboard(cmd.Context(), w)
	if err != nil {
		return fmt.Errorf("failed to get dashboard: %w", err)
	}

	if dashboardJSON {
		out, _ := json.MarshalIndent(view, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	renderView(cmd.OutOrStdout(), view)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	w, err := dashboard.ParseWindow(watchWindow)
	if err != nil {
		return err
	}
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	loc := time.Local
	if watchTZ != "" {
		if loc, err = time.LoadLocation(watchTZ); err != nil {
			return fmt.Errorf("unknown time zone %q: %w", watchTZ, err)
		}
	}

	token := watchToken
	if token == "" {
		token = os.Getenv("PLANNER_API_TOKEN")
	}
	if token == "" {
		if data, err := LoadToken(); err == nil {
			token = data.Token
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := source.New(watchAPI, token, nil)
	board := aggregator.NewBoard(src, report.Log{}, loc)
	out := cmd.OutOrStdout()

	fmt.Fprintf(os.Stderr, "Watching %s every %s (Ctrl-C to stop)\n", watchAPI, watchInterval)
	return watch(ctx, board, w, watchInterval, func(v dashboard.View) {
		fmt.Fprint(out, "\033[H\033[2J")
		renderView(out, &v)
	})
}

// watch refreshes the board every interval until ctx is done. Refreshes run
// in the background so a slow pass never delays the next one. Whenever a
// pass publishes, the board's latest view is shown if it is newer than the
// last one shown.
func watch(ctx context.Context, board *aggregator.Board, w dashboard.Window, interval time.Duration, show func(dashboard.View)) error {
	published := make(chan struct{}, 1)
	refresh := func() {
		go func() {
			if _, ok := board.Refresh(ctx, w); !ok {
				return
			}
			select {
			case published <- struct{}{}:
			default:
			}
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var shown uint64
	refresh()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		case <-published:
			shown = showNewer(board, shown, show)
		}
	}
}

// showNewer shows the board's latest view when its generation is past
// shown, and returns the generation now on screen.
func showNewer(board *aggregator.Board, shown uint64, show func(dashboard.View)) uint64 {
	v, gen := board.Latest()
	if gen <= shown {
		return shown
	}
	show(v)
	return gen
}

// renderView prints a view as plain-text tables. Times are shown relative
// to when the view was generated.
func renderView(out io.Writer, v *dashboard.View) {
	now := v.GeneratedAt
	loc := now.Location()

	fmt.Fprintf(out, "Household dashboard (%s, %s to %s)\n",
		v.Window, v.Range.Start.Format("Mon Jan 2"), v.Range.End.Format("Mon Jan 2"))

	if len(v.Failures) > 0 {
		names := make([]string, 0, len(v.Failures))
		for s := range v.Failures {
			names = append(names, string(s))
		}
		sort.Strings(names)
		fmt.Fprintf(out, "! Could not load: %s\n", strings.Join(names, ", "))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Priority: %s\n", histogramLine(v.ByPriority))
	fmt.Fprintf(out, "Status:   %s\n", histogramLine(v.ByStatus))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Due soon")
	if len(v.DueSoon) == 0 {
		fmt.Fprintln(out, "  Nothing due in the next 7 days")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, t := range v.DueSoon {
			assignee := t.Assignee
			if assignee == "" {
				assignee = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", dashboard.FormatWhen(t.DueDate.In(loc), now), t.Title, t.Priority, assignee)
		}
		tw.Flush()
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Reminders")
	if len(v.Reminders) == 0 {
		fmt.Fprintln(out, "  No upcoming reminders")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, r := range v.Reminders {
			fmt.Fprintf(tw, "  %s\t%s\n", dashboard.FormatWhen(r.RemindAt.In(loc), now), r.Title)
		}
		tw.Flush()
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Recently updated knowledge")
	if len(v.RecentKnowledge) == 0 {
		fmt.Fprintln(out, "  Nothing yet")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, k := range v.RecentKnowledge {
			category := k.Category
			if category == "" {
				category = "-"
			}
			updated := "-"
			if !k.UpdatedAt.IsZero() {
				updated = dashboard.FormatWhen(k.UpdatedAt.In(loc), now)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", k.Title, category, updated)
		}
		tw.Flush()
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Workload (%s)\n", v.Window)
	if len(v.Workload) == 0 {
		fmt.Fprintln(out, "  No team members")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tROLE\tDONE\tCAPACITY\tLOAD\tLEVEL")
		for _, s := range v.Workload {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d%%\t%s\n",
				s.Name, s.Role,
				dashboard.FormatMinutes(s.Assigned), dashboard.FormatMinutes(s.Capacity),
				s.Percentage, dashboard.LevelFor(s.Percentage))
		}
		tw.Flush()
	}
	if v.UnmatchedAssignees > 0 {
		fmt.Fprintf(out, "  (%d completed task(s) assigned to people not on the roster)\n", v.UnmatchedAssignees)
	}
}

func histogramLine(h dashboard.Histogram) string {
	parts := make([]string, 0, len(h.Buckets)+1)
	for _, b := range h.Buckets {
		parts = append(parts, fmt.Sprintf("%s %d", b.Key, b.Count))
	}
	if h.Unclassified > 0 {
		parts = append(parts, fmt.Sprintf("other %d", h.Unclassified))
	}
	return strings.Join(parts, "  ")
}
