// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"github.com/spf13/cobra"

	"inkwell/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every pending migration, or roll back the most recent one.

Example:
  $ inkwell migrate
  $ inkwell migrate --down`,
	RunE: func(cmd *cobra.Command, args []string) error {
		down, _ := cmd.Flags().GetBool("down")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if down {
			return database.MigrateDown(db)
		}
		return database.Migrate(db)
	},
}

func init() {
	migrateCmd.Flags().Bool("down", false, "Roll back the most recent migration")
	rootCmd.AddCommand(migrateCmd)
}
