package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table and composite index",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, pg, err := openPostgres(v)
			if err != nil {
				return err
			}
			defer pg.Close()
			defer log.Sync()

			if err := pg.AutoMigrateAll(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		},
	}
}
