package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giftflow/giftflow-api/internal/platform/config"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

func newSeedCmd() *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a ledger document from a JSON file into the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var doc ledgerstore.Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			store, cleanup, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if !force {
				existing, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}
				if len(existing.Members) > 0 || len(existing.Families) > 0 {
					return fmt.Errorf("store is not empty; pass --force to overwrite it")
				}
			}

			if err := store.Replace(cmd.Context(), doc); err != nil {
				return err
			}
			cmd.Printf("seeded %d families, %d members, %d ideas, %d gifts\n",
				len(doc.Families), len(doc.Members), len(doc.GiftIdeas), len(doc.PurchasedGifts))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the JSON document to load")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite a non-empty store")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
