package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/incidentlab/internal/casebook"
	"github.com/abhisek/incidentlab/internal/evaluation"
	"github.com/abhisek/incidentlab/internal/progress"
	"github.com/abhisek/incidentlab/internal/store"
	"github.com/abhisek/incidentlab/internal/ui/theme"
)

var openCmd = &cobra.Command{
	Use:   "open <case>",
	Short: "Start (or resume) an investigation and show the evidence so far",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		p, err := s.Tracker.BeginInvestigation(ctx, s.player, c.ID)
		if err != nil {
			return err
		}

		fmt.Println(theme.Title.Render(c.Title))
		fmt.Println(theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s", c.ID, c.Difficulty, p.State())))
		fmt.Println()
		fmt.Println(strings.TrimSpace(c.Summary))
		for i := range p.CluesRevealed {
			fmt.Println()
			printClue(c, i)
		}
		fmt.Println()
		fmt.Println(theme.Hint.Render(fmt.Sprintf("%d of %d clues revealed. Hints available: %d.",
			p.CluesRevealed, len(c.Clues), len(c.Hints))))
		return nil
	},
}

var clueCmd = &cobra.Command{
	Use:   "clue <case>",
	Short: "Reveal the next clue (costs points beyond the first two)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		before, err := s.Tracker.Progress(ctx, s.player, c.ID)
		if err != nil {
			return err
		}
		n, err := s.Tracker.RevealClue(ctx, s.player, c.ID)
		if err != nil {
			return err
		}
		if n == before.CluesRevealed {
			fmt.Println("All clues are already revealed.")
			return nil
		}
		printClue(c, n-1)
		return nil
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <case> [hint-id]",
	Short: "List hints, or view one (costs points the first time)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.Catalog.Get(args[0])
		if err != nil {
			return err
		}

		if len(args) == 1 {
			p, err := s.Tracker.Progress(ctx, s.player, c.ID)
			if err != nil {
				return err
			}
			for _, h := range c.Hints {
				mark := " "
				if p.HasViewedHint(h.ID) {
					mark = "•"
				}
				fmt.Printf("%s %s\n", mark, h.ID)
			}
			return nil
		}

		h := c.Hint(args[1])
		if h == nil {
			return fmt.Errorf("%w: %q", progress.ErrUnknownHint, args[1])
		}
		if _, err := s.Tracker.RecordHintView(ctx, s.player, c.ID, h.ID); err != nil {
			return err
		}
		fmt.Println(theme.Hint.Render(h.Text))
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <case> <answer...>",
	Short: "Submit a root cause (phase 1) or a fix (phase 2)",
	Long: "Submit an answer. Without --phase the next open phase is used: the\n" +
		"root cause until it is identified, the fix after that.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		caseID := args[0]
		text := strings.Join(args[1:], " ")

		phase, _ := cmd.Flags().GetInt("phase")
		if phase == 0 {
			p, err := s.Tracker.Progress(ctx, s.player, caseID)
			if err != nil {
				return err
			}
			phase = 1
			if p.RootCauseCorrect {
				phase = 2
			}
		}

		out, err := s.Tracker.CheckSubmission(ctx, s.player, caseID, phase, text)
		switch {
		case errors.Is(err, progress.ErrCaseClosed):
			return fmt.Errorf("case %s is closed", caseID)
		case errors.Is(err, progress.ErrInvalidState) && phase == 2:
			return errors.New("identify the root cause before proposing a fix")
		case errors.Is(err, progress.ErrInvalidState):
			return errors.New("root cause already identified; submit the fix")
		case err != nil:
			return err
		}

		fmt.Println(verdictBadge(out.Verdict))
		if out.Explanation != "" {
			fmt.Println(out.Explanation)
		}
		if len(out.MatchedConcepts) > 0 {
			fmt.Println(theme.Subtitle.Render("Matched: " + strings.Join(out.MatchedConcepts, ", ")))
		}
		if out.Score != nil {
			fmt.Println()
			fmt.Printf("Case solved! Score: %s\n", theme.Score.Render(fmt.Sprint(*out.Score)))
		}
		return nil
	},
}

var giveUpCmd = &cobra.Command{
	Use:   "giveup <case>",
	Short: "Give up on a case and reveal the answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		if err := s.Tracker.GiveUp(ctx, s.player, c.ID); err != nil {
			return err
		}
		p, err := s.Tracker.Progress(ctx, s.player, c.ID)
		if err != nil {
			return err
		}
		if p.Solved {
			fmt.Println("Already solved; nothing to give up.")
			return nil
		}

		fmt.Println(theme.Title.Render("Root cause"))
		fmt.Println(c.Rubric.DiagnosisPhrase)
		fmt.Println()
		fmt.Println(theme.Title.Render("Fix"))
		fmt.Println(strings.TrimSpace(c.Rubric.SolutionDescription))
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <case>",
	Short: "Show the score you would get if you solved the case now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		est, err := s.Tracker.LiveScore(ctx, s.player, args[0])
		if err != nil {
			return err
		}
		fmt.Println(renderBreakdown(est))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [case]",
	Short: "List your judged submissions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var caseID string
		if len(args) == 1 {
			if _, err := s.Catalog.Get(args[0]); err != nil {
				return err
			}
			caseID = args[0]
		}
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := s.EventRepo.QueryEvaluations(ctx, s.player, caseID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No submissions yet.")
			return nil
		}

		for _, e := range events {
			fmt.Printf("%s  %-24s  %-10s #%d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.CaseID, 24),
				evaluation.Phase(e.Phase),
				e.Attempt,
				verdictBadge(evaluation.Verdict(e.Verdict)))
			fmt.Printf("    %s\n", truncate(e.Submission, 96))
			if e.Score != nil {
				fmt.Printf("    score %s\n", theme.Score.Render(fmt.Sprint(*e.Score)))
			}
		}
		return nil
	},
}

func printClue(c *casebook.Case, i int) {
	clue := c.Clues[i]
	title := theme.Title.Render(fmt.Sprintf("Clue %d: %s", i+1, clue.Title))
	fmt.Println(title)
	fmt.Println(theme.Card.Render(strings.TrimRight(clue.Body, "\n")))
}

func init() {
	submitCmd.Flags().IntP("phase", "p", 0, "1 = root cause, 2 = fix (default: next open phase)")
	historyCmd.Flags().IntP("limit", "n", 0, "Number of submissions to show (0 = all)")
}
