package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscore/internal/leadio"
)

var resultsCmd = &cobra.Command{
	Use:   "results <offer-name>",
	Short: "Export saved results for an offer as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		outputPath, _ := cmd.Flags().GetString("output")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		offer, err := st.GetOfferByName(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "results: offer %s", args[0])
		}

		results, err := st.ListResults(ctx, offer.ID)
		if err != nil {
			return eris.Wrap(err, "results: list")
		}
		if len(results) == 0 {
			fmt.Printf("No results for offer %q. Run 'leadscore score %s --save' first.\n", offer.Name, offer.Name)
			return nil
		}

		w := os.Stdout
		if outputPath != "" {
			w, err = os.Create(outputPath)
			if err != nil {
				return eris.Wrapf(err, "results: create output file %s", outputPath)
			}
			defer w.Close() //nolint:errcheck
		}

		return leadio.WriteResults(w, results)
	},
}

func init() {
	resultsCmd.Flags().String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(resultsCmd)
}
