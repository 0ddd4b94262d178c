package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadscore/internal/model"
)

var offerCmd = &cobra.Command{
	Use:   "offer <offer.yaml|offer.json>",
	Short: "Create an offer from a YAML or JSON file",
	Long: `Create an offer from a file with fields name, value_props, and
ideal_use_cases. Fails if an offer with the same name already exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "offer: read %s", args[0])
		}

		var offer model.Offer
		if strings.HasSuffix(args[0], ".json") {
			err = json.Unmarshal(data, &offer)
		} else {
			err = yaml.Unmarshal(data, &offer)
		}
		if err != nil {
			return eris.Wrapf(err, "offer: parse %s", args[0])
		}
		if strings.TrimSpace(offer.Name) == "" {
			return eris.New("offer: name is required")
		}

		created, err := st.CreateOffer(ctx, offer)
		if err != nil {
			return eris.Wrap(err, "offer: create")
		}

		fmt.Printf("Created offer %q (%d value props, %d ideal use cases)\n",
			created.Name, len(created.ValueProps), len(created.IdealUseCases))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offerCmd)
}
