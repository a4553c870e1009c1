// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/store"
)

var initSettingsCmd = &cobra.Command{
	Use:   "init-settings <file.yaml>",
	Short: "Write site settings from a YAML file",
	Long: `Create or update the site settings row from a YAML file.

Keys use the same names as the JSON API (siteTitle, footerText, ...).
Keys left out of the file keep their current value. The cached settings
are invalidated so the site picks up the change immediately.

Example:
  $ inkwell init-settings settings.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		patch, err := database.LoadSettingsFile(args[0])
		if err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer valkeyClient.Close()

		settings := blog.NewSettings(store.NewSiteSettingStore(db), cache.New(cache.NewValkeyBackend(valkeyClient)))
		s, err := settings.Apply(cmd.Context(), patch)
		if err != nil {
			return err
		}

		slog.Info("site settings written", "file", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Site settings updated: %q\n", s.SiteTitle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initSettingsCmd)
}
