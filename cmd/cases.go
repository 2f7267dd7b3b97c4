package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/incidentlab/internal/progress"
	"github.com/abhisek/incidentlab/internal/ui/theme"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List incident cases and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCases(cmd)
	},
}

func runCases(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	all, err := s.Tracker.AllProgress(ctx, s.player)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	fmt.Println(theme.Title.Render("Incident cases"))
	fmt.Printf("%-28s  %-10s  %-20s  %s\n", "ID", "Level", "State", "Score")
	fmt.Println(strings.Repeat("─", 72))
	for _, c := range s.Catalog.List() {
		p, ok := all[c.ID]
		if !ok {
			p = progress.New()
		}
		score := "-"
		if p.Score != nil {
			score = fmt.Sprint(*p.Score)
		}
		// Pad before styling so ANSI codes don't skew the columns.
		fmt.Printf("%-28s  %-10s  %s  %s\n",
			c.ID, c.Difficulty, stateLabel(p.State())+strings.Repeat(" ", max(0, 20-len(p.State().String()))), score)
	}
	fmt.Println()
	fmt.Println(theme.Hint.Render("Start one with: incidentlab open <id>"))
	return nil
}
