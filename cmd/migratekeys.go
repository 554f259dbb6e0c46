package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/tips"
)

var migrateKeysCmd = &cobra.Command{
	Use:   "migrate-keys",
	Short: "Rewrite legacy unprefixed tip keys to usgs:/custom: form",
	Long:  "One-time migration for tip collections written before key prefixes existed. Bare all-digit keys become usgs:<siteId>, everything else custom:<key>. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := tips.NewService(st, zap.L())
		moved, err := svc.MigrateLegacy(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("migration complete", zap.Int("keys_moved", moved))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateKeysCmd)
}
