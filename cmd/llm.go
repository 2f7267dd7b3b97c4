package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/incidentlab/internal/llm"
	"github.com/abhisek/incidentlab/internal/store"
	"github.com/abhisek/incidentlab/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect classifier request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent classifier calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			// Filters run in memory, so fetch everything when one is set.
			opts := store.QueryOpts{Limit: limit}
			if purpose != "" || failedOnly {
				opts.Limit = 0
			}
			events, err := s.EventRepo().QueryLLMEvents(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			var shown []store.LLMRequestEventRecord
			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				if failedOnly && e.Success {
					continue
				}
				shown = append(shown, e)
				if limit > 0 && len(shown) == limit {
					break
				}
			}
			if len(shown) == 0 {
				fmt.Println("No classifier calls recorded.")
				return nil
			}

			fmt.Printf("%-5s  %-19s  %-20s  %-28s  %6s  %6s  %7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Println(rule(108))
			for _, e := range shown {
				ok := theme.Correct.Render("✓")
				if !e.Success {
					ok = theme.Incorrect.Render("✗")
				}
				fmt.Printf("%-5d  %-19s  %-20s  %-28s  %6d  %6d  %7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(e.Purpose, 20),
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and completion of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			e, err := s.EventRepo().GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fields := [][2]string{
				{"ID", strconv.Itoa(e.ID)},
				{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
				{"Provider", e.Provider},
				{"Model", e.Model},
				{"Purpose", e.Purpose},
				{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
				{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
				{"Success", strconv.FormatBool(e.Success)},
			}
			if e.ErrorMessage != "" {
				fields = append(fields, [2]string{"Error", e.ErrorMessage})
			}
			for _, f := range fields {
				fmt.Printf("%-10s %s\n", f[0]+":", f[1])
			}

			printSection("REQUEST", e.RequestBody)
			printSection("RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show classifier token usage, failures and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			repo := s.EventRepo()
			stats, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(stats) == 0 {
				fmt.Println("No classifier usage recorded yet.")
				return nil
			}

			events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			failed := make(map[string]int)
			for _, e := range events {
				if !e.Success {
					failed[e.Purpose]++
				}
			}

			fmt.Println(theme.Title.Render("Usage by purpose"))
			fmt.Printf("%-20s  %6s  %6s  %10s  %10s  %8s\n",
				"Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
			fmt.Println(rule(72))
			var calls, fails, in, out int
			for _, st := range stats {
				fmt.Printf("%-20s  %6d  %6d  %10d  %10d  %8d\n",
					truncate(st.Purpose, 20), st.Calls, failed[st.Purpose], st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
				calls += st.Calls
				fails += failed[st.Purpose]
				in += st.InputTokens
				out += st.OutputTokens
			}
			fmt.Println(rule(72))
			fmt.Printf("%-20s  %6d  %6d  %10d  %10d\n", "TOTAL", calls, fails, in, out)

			models, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(models) == 0 {
				return nil
			}

			fmt.Println()
			fmt.Println(theme.Title.Render("Estimated cost (USD)"))
			fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
			fmt.Println(rule(76))
			var total float64
			var unpriced []string
			for _, mu := range models {
				cost := "?"
				if price := llm.LookupCost(mu.Model); price != nil {
					c := price.Cost(mu.InputTokens, mu.OutputTokens)
					total += c
					cost = formatCost(c)
				} else {
					unpriced = append(unpriced, mu.Model)
				}
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
			}
			fmt.Println(rule(76))
			label := "TOTAL"
			if len(unpriced) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
			if len(unpriced) > 0 {
				fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
			}
			return nil
		})
	},
}

// withStore opens the database for the duration of fn.
func withStore(cmd *cobra.Command, fn func(context.Context, *store.Store) error) error {
	dbPath, err := resolveDBPath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	ctx := cmd.Context()
	s, err := store.OpenContext(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(ctx, s)
}

func printSection(title, body string) {
	fmt.Println()
	fmt.Println(rule(60))
	fmt.Println(title)
	fmt.Println(rule(60))
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func rule(n int) string {
	return strings.Repeat("─", n)
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
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (evaluate-root-cause, evaluate-solution)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
