// cmd/libraxpert/migrate.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				versions, err := m.Up(ctx)
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					cmd.Println("Schema is up to date")
				}
				for _, v := range versions {
					cmd.Printf("Applied %05d\n", v)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				v, err := m.Down(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Rolled back %05d\n", v)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					cmd.Printf("%05d  %-8s %s\n", s.Version, state, s.Path)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *postgres.Migrator) error {
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				cmd.Println(v)
				return nil
			}),
		},
	)
}

// withMigrator connects to database_url and hands a migrator to run.
func withMigrator(run func(context.Context, *cobra.Command, *postgres.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := postgres.Open(ctx, opts.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer st.Close()

		m, err := postgres.NewMigrator(st.DB().DB)
		if err != nil {
			return err
		}
		return run(ctx, cmd, m)
	}
}
