// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/cache"
)

var cacheFlushCmd = &cobra.Command{
	Use:   "cache-flush",
	Short: "Drop every cached query result",
	Long: `Remove all cached query results and tag sets from Valkey.

Sessions are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer valkeyClient.Close()

		if err := cache.NewValkeyBackend(valkeyClient).Flush(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache flushed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheFlushCmd)
}
