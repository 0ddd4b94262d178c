package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadio"
)

var importCmd = &cobra.Command{
	Use:   "import <leads.csv>",
	Short: "Import leads from a CSV file",
	Long: `Import leads from a CSV file into the store.

The first row must be a header; recognized columns are
id, name, role, company, industry, location, linkedin_bio.
Existing leads and results are cleared before the import.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "import: open %s", args[0])
		}
		defer f.Close()

		leads, err := leadio.ReadLeads(f)
		if err != nil {
			return eris.Wrap(err, "import: parse leads")
		}

		count, err := st.ReplaceLeads(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "import: store leads")
		}

		zap.L().Info("leads imported", zap.Int("count", count))
		fmt.Printf("Imported %d leads. Previous leads and results cleared.\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
