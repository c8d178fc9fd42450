package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/platform/sqldb"
	"github.com/spf13/cobra"
)

// errNoMigrations is returned for migrate commands against the memory driver.
var errNoMigrations = errors.New("the memory driver has no schema to migrate")

func newMigrateCmd(configPath *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(action func(ctx context.Context, m *sqldb.Migrator, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initialize(*configPath)
			if err != nil {
				return err
			}
			return withMigrator(commandContext(cmd), cfg.Database, log, func(ctx context.Context, m *sqldb.Migrator) error {
				return action(ctx, m, cmd.OutOrStdout())
			})
		}
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, m *sqldb.Migrator, _ io.Writer) error {
				return m.Up(ctx)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, m *sqldb.Migrator, _ io.Writer) error {
				return m.Down(ctx)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			Args:  cobra.NoArgs,
			RunE:  run(printMigrationStatus),
		},
	)
	return migrate
}

// withMigrator opens the configured database, runs fn with a migrator over it
// and closes the connection.
func withMigrator(
	ctx context.Context,
	cfg config.DatabaseConfig,
	log *slog.Logger,
	fn func(ctx context.Context, m *sqldb.Migrator) error,
) error {
	if cfg.Driver == driverMemory {
		return errNoMigrations
	}

	db, dialect, err := sqldb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("failed to close database", slog.String("error", cerr.Error()))
		}
	}()

	migrator, err := sqldb.NewMigrator(db, dialect, log)
	if err != nil {
		return err
	}
	return fn(ctx, migrator)
}

func printMigrationStatus(ctx context.Context, m *sqldb.Migrator, out io.Writer) error {
	states, err := m.Status(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tSOURCE")
	for _, st := range states {
		state := "pending"
		if st.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", st.Version, state, st.Source)
	}
	return tw.Flush()
}
