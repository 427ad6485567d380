package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/database/seeders"
	"github.com/nutrieve/nutrieve/pkg/database"
	"github.com/nutrieve/nutrieve/pkg/migration"
)

// bootDB loads config and opens database.DB.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			n, err := migration.New(database.DB, cmd.OutOrStdout()).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
			return nil
		},
	}
}

func newMigrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last batch of migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			n, err := migration.New(database.DB, cmd.OutOrStdout()).Rollback()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back\n", n)
			return nil
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show which migrations have run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			statuses, err := migration.New(database.DB, nil).Status()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
			for _, s := range statuses {
				ran, batch := "no", "-"
				if s.Ran {
					ran, batch = "yes", fmt.Sprint(s.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
			}
			return w.Flush()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Run all database seeders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootDB(); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			return seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
		},
	}
}
