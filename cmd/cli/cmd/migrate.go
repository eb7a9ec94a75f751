package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"geodisasters/database"
)

const (
	migrationDir = "migrations"
)

func newMigrateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "database migration commands",
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newMigrateCmdCreate())
	c.AddCommand(newMigrateCmdList())
	c.AddCommand(newMigrateCmdUp())
	c.AddCommand(newMigrateCmdDown())
	c.AddCommand(newMigrateCmdGoto())
	c.AddCommand(newMigrateCmdVersion())

	return c
}

func newMigrateCmdCreate() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "create a new migration file",
		RunE: func(c *cobra.Command, args []string) error {
			return newMigrateCommand(migrationDir).Create(c, args)
		},
	}
}

func newMigrateCmdList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list migration versions",
		RunE: func(c *cobra.Command, args []string) error {
			return newMigrateCommand(migrationDir).List(c)
		},
	}
}

func newMigrateCmdUp() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate up to latest version",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Up(c)
		},
	}
}

func newMigrateCmdDown() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "migrate down all",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Down(c)
		},
	}
}

func newMigrateCmdGoto() *cobra.Command {
	return &cobra.Command{
		Use:   "goto VERSION",
		Short: "migrate to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return newMigrateCommand(migrationDir).Goto(c, args)
		},
	}
}

func newMigrateCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show current migration version",
		RunE: func(c *cobra.Command, _ []string) error {
			return newMigrateCommand(migrationDir).Version(c)
		},
	}
}

type migrationEntry struct {
	Version     string
	Description string
}

type migrateCommand struct {
	migrationDir string
}

func newMigrateCommand(migrationDir string) *migrateCommand {
	return &migrateCommand{migrationDir: migrationDir}
}

func (m *migrateCommand) Create(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("migration name is required")
	}

	command := exec.Command("go", "tool", "migrate", "create", "-ext", "sql", "-dir", m.migrationDir, "-seq", args[0])
	command.Stdout = cmd.OutOrStdout()
	command.Stderr = cmd.OutOrStderr()

	return command.Run()
}

func (m *migrateCommand) List(cmd *cobra.Command) error {
	entries, err := m.listMigrations()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", entry.Version, entry.Description)
	}

	return nil
}

func (m *migrateCommand) listMigrations() ([]migrationEntry, error) {
	entries, err := os.ReadDir(m.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	migrations := []migrationEntry{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		baseName := strings.TrimSuffix(name, ".up.sql")
		parts := strings.Split(baseName, "_")
		if len(parts) < 2 {
			continue
		}

		migrations = append(migrations, migrationEntry{
			Version:     parts[0],
			Description: strings.Join(parts[1:], " "),
		})
	}

	return migrations, nil
}

func (m *migrateCommand) Up(cmd *cobra.Command) error {
	mig, err := m.makeMigrationInstance(cmd)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (m *migrateCommand) Down(cmd *cobra.Command) error {
	if !m.askConfirmation(cmd, "Are you sure you want to apply all down migrations?") {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	mig, err := m.makeMigrationInstance(cmd)
	if err != nil {
		return err
	}
	defer mig.Close()

	return mig.Down()
}

func (m *migrateCommand) Goto(cmd *cobra.Command, args []string) error {
	version, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}

	mig, err := m.makeMigrationInstance(cmd)
	if err != nil {
		return err
	}
	defer mig.Close()

	cur, _, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	if uint(version) < cur {
		if !m.askConfirmation(cmd, "Are you sure you want to apply down migrations?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	return mig.Migrate(uint(version))
}

func (m *migrateCommand) Version(cmd *cobra.Command) error {
	mig, err := m.makeMigrationInstance(cmd)
	if err != nil {
		return err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
	if dirty {
		log.WithField("version", version).Warn("database is in a dirty migration state")
	}

	return nil
}

func (m *migrateCommand) makeMigrationInstance(cmd *cobra.Command) (*migrate.Migrate, error) {
	config, err := dbConfigFromContext(cmd)
	if err != nil {
		return nil, err
	}

	db := database.NewRawDB(config)
	if err := db.Connect(); err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(db.DB(), &postgres.Config{
		SchemaName: database.SchemaName,
	})
	if err != nil {
		db.Shutdown()
		return nil, err
	}

	return migrate.NewWithDatabaseInstance("file://"+m.migrationDir, "postgres", driver)
}

func (m *migrateCommand) askConfirmation(cmd *cobra.Command, q string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/n): ", q)

	s := bufio.NewScanner(cmd.InOrStdin())
	s.Scan()
	res := strings.TrimSpace(strings.ToLower(s.Text()))

	return res == "y" || res == "yes"
}
