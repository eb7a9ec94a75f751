package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/do"

	"geodisasters/cmd/task/cmd"
	"geodisasters/database"
	"geodisasters/internal/api/geodisasters"
	"geodisasters/internal/api/georapid"
	"geodisasters/internal/logger"
)

const (
	envFile = "./cmd/task/.env"
)

type envVars struct {
	RapidAPIKey  string `env:"x_rapidapi_key,required"`
	GeoRapidHost string `env:"GEORAPID_HOST" envDefault:"geodisasters.p.rapidapi.com"`
	GeoRapidURL  string `env:"GEORAPID_URL"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"INFO"`
	DBHost       string `env:"DB_HOST" envDefault:"localhost"`
	DBPort       int    `env:"DB_PORT" envDefault:"5432"`
	DBUser       string `env:"DB_USER"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME"`
}

var ev envVars

func init() {
	_, err := os.Stat(envFile)
	if err == nil {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
			os.Exit(1)
		}
	} else if !os.IsNotExist(err) {
		fmt.Printf("failed to check env file existence: %v\n", err)
		os.Exit(1)
	}

	ev, err = env.ParseAs[envVars]()
	if err != nil {
		fmt.Printf("failed to parse environment variables: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(ev.LogLevel); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	dbConfig := database.Config{
		Host:     ev.DBHost,
		Port:     ev.DBPort,
		User:     ev.DBUser,
		Password: ev.DBPassword,
		DBName:   ev.DBName,
		SSLMode:  false,
	}

	ctx := context.Background()
	ctx = context.WithValue(ctx, database.CTXKeyDBConfig, dbConfig)

	injector := do.New()
	do.Provide(injector, func(i *do.Injector) (*georapid.Client, error) {
		url := ev.GeoRapidURL
		if url == "" {
			url = fmt.Sprintf("https://%s", ev.GeoRapidHost)
		}
		return georapid.NewClient(url, ev.GeoRapidHost, ev.RapidAPIKey), nil
	})
	do.Provide(injector, func(i *do.Injector) (*geodisasters.API, error) {
		return geodisasters.NewAPI(), nil
	})
	do.Provide(injector, func(i *do.Injector) (database.DB, error) {
		return database.Connect(dbConfig)
	})

	command := cmd.NewRootCmd(injector)
	command.SetContext(ctx)

	if err := command.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
