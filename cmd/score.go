package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadio"
	"github.com/sells-group/leadscore/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score <offer-name>",
	Short: "Score all imported leads against an offer",
	Long: `Score every imported lead against the named offer.

Each lead receives a rule-based sub-score (role authority, industry fit,
field completeness) plus an LLM intent classification score. Leads are
classified in batches with bounded concurrency; failed batches degrade to
Low-intent fallbacks instead of aborting the run.

Examples:
  # Score and print a table
  leadscore score saas-outreach

  # Score, save results, and export CSV
  leadscore score saas-outreach --save --format csv --output results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	f.Bool("save", false, "persist results to the store")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	offerName := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	offer, err := env.Store.GetOfferByName(ctx, offerName)
	if err != nil {
		return eris.Wrapf(err, "score: offer %s", offerName)
	}

	leads, err := env.Store.ListLeads(ctx)
	if err != nil {
		return eris.Wrap(err, "score: list leads")
	}
	if len(leads) == 0 {
		fmt.Println("No leads imported. Run 'leadscore import' first.")
		return nil
	}

	log := zap.L().With(zap.String("command", "score"))
	log.Info("starting bulk scoring",
		zap.String("offer", offer.Name),
		zap.Int("leads", len(leads)),
	)

	results := env.Engine.ScoreBulk(ctx, leads, *offer)

	log.Info("bulk scoring complete", zap.Int("scored", len(results)))

	if save {
		leadIDs := make([]string, len(leads))
		for i, lead := range leads {
			leadIDs[i] = lead.ID
		}
		saved, err := env.Store.ReplaceResults(ctx, offer.ID, leadIDs, results)
		if err != nil {
			return eris.Wrap(err, "score: save results")
		}
		fmt.Printf("Saved %d results for offer %q\n", saved, offer.Name)
	}

	stored := make([]model.StoredResult, len(results))
	for i, r := range results {
		stored[i] = model.StoredResult{
			Lead:      leads[i],
			Intent:    r.Intent,
			Score:     r.Score,
			Reasoning: r.Reasoning,
		}
	}

	if err := outputResults(stored, format, outputPath); err != nil {
		return err
	}

	printScoreSummary(results)
	return nil
}

func outputResults(results []model.StoredResult, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return leadio.WriteResults(w, results)
	case "table":
		return writeResultTable(w, results)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeResultTable(w *os.File, results []model.StoredResult) error {
	header := fmt.Sprintf("%-25s %-25s %-25s %-8s %6s  %s\n",
		"Name", "Role", "Company", "Intent", "Score", "Reasoning")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 120)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, r := range results {
		line := fmt.Sprintf("%-25s %-25s %-25s %-8s %6d  %s\n",
			truncate(r.Lead.Name, 25), truncate(r.Lead.Role, 25), truncate(r.Lead.Company, 25),
			r.Intent, r.Score, truncate(r.Reasoning, 60))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printScoreSummary(results []model.ScoreResult) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	counts := map[model.Intent]int{}
	var sum, maxScore int
	minScore := -1
	for _, r := range results {
		counts[r.Intent]++
		sum += r.Score
		if r.Score > maxScore {
			maxScore = r.Score
		}
		if minScore < 0 || r.Score < minScore {
			minScore = r.Score
		}
	}
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Total scored:  %d\n", len(results))
	fmt.Printf("Intents:       High %d / Medium %d / Low %d\n",
		counts[model.IntentHigh], counts[model.IntentMedium], counts[model.IntentLow])
	fmt.Printf("Score range:   %d - %d\n", minScore, maxScore)
	fmt.Printf("Average score: %.1f\n", float64(sum)/float64(len(results)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
