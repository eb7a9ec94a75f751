package cmd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"geodisasters/database"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "initialize the database",
		RunE: func(c *cobra.Command, args []string) error {
			return newInitDBCommand().Execute(c, args)
		},
	}
}

type initDBCommand struct{}

func newInitDBCommand() *initDBCommand {
	return &initDBCommand{}
}

func (c *initDBCommand) Execute(cmd *cobra.Command, args []string) error {
	config, err := dbConfigFromContext(cmd)
	if err != nil {
		return err
	}

	db := database.NewRawDB(config)
	if err := db.Connect(); err != nil {
		return err
	}
	defer db.Shutdown()

	if err := db.Init(); err != nil {
		return err
	}

	log.WithField("schema", database.SchemaName).Debug("schema is ready")
	fmt.Fprintln(cmd.OutOrStdout(), "database initialized successfully.")

	return nil
}

func dbConfigFromContext(cmd *cobra.Command) (database.Config, error) {
	config, ok := cmd.Context().Value(database.CTXKeyDBConfig).(database.Config)
	if !ok {
		return database.Config{}, errors.New("database config is nil")
	}

	return config, nil
}
