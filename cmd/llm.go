package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			events, err := st.EventRepo().QueryLLMEvents(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}

			tw := table(out)
			fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
			for _, ev := range events {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					ev.ID, ev.Timestamp.Local().Format(timeLayout), ev.Purpose,
					truncate(ev.Model, 28), ev.InputTokens, ev.OutputTokens, ev.LatencyMs, mark(ev.Success))
			}
			return tw.Flush()
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			ev, err := st.EventRepo().GetLLMEvent(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("event %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}

			out := cmd.OutOrStdout()
			tw := table(out)
			fmt.Fprintf(tw, "ID:\t%d\n", ev.ID)
			fmt.Fprintf(tw, "Time:\t%s\n", ev.Timestamp.Local().Format(timeLayout))
			fmt.Fprintf(tw, "Provider:\t%s\n", ev.Provider)
			fmt.Fprintf(tw, "Model:\t%s\n", ev.Model)
			fmt.Fprintf(tw, "Purpose:\t%s\n", ev.Purpose)
			fmt.Fprintf(tw, "Tokens:\t%d in / %d out\n", ev.InputTokens, ev.OutputTokens)
			fmt.Fprintf(tw, "Latency:\t%dms\n", ev.LatencyMs)
			fmt.Fprintf(tw, "Success:\t%v\n", ev.Success)
			if ev.ErrorMessage != "" {
				fmt.Fprintf(tw, "Error:\t%s\n", ev.ErrorMessage)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			section(out, "REQUEST", ev.RequestBody)
			section(out, "RESPONSE", ev.ResponseBody)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose and estimated cost by model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			byPurpose, err := st.EventRepo().LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}

			fmt.Fprintln(out, "Usage by purpose")
			tw := table(out)
			fmt.Fprintln(tw, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tTOTAL\tAVG MS")
			var calls, in, outTok int
			for _, u := range byPurpose {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
					u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
				calls += u.Calls
				in += u.InputTokens
				outTok += u.OutputTokens
			}
			fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\n", calls, in, outTok, in+outTok)
			if err := tw.Flush(); err != nil {
				return err
			}

			byModel, err := st.EventRepo().LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(byModel) == 0 {
				return nil
			}
			return printCosts(out, byModel)
		})
	},
}

// printCosts prints estimated spend per model. Models missing from the
// pricing table show "?" and make the total partial.
func printCosts(out io.Writer, usage []store.ModelUsage) error {
	fmt.Fprintln(out, "\nEstimated cost (USD)")
	tw := table(out)
	fmt.Fprintln(tw, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST")

	var total float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if p := llm.LookupCost(u.Model); p != nil {
			c := p.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func section(w io.Writer, title, body string) {
	rule := strings.Repeat("─", 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", rule, title, rule, body)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	f := llmListCmd.Flags()
	f.IntP("limit", "n", 20, "Number of events to show")
	f.StringP("purpose", "p", "", "Filter by purpose (math-gen, hanja-gen, english-gen)")
	f.Duration("since", 0, "Only show events newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
