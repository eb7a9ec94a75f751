package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	dotEnvFile = ".env.test"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Schema   string
}

type HasModelDBTestSuite interface {
	TableModels() []interface{}
}

type TestingDBSuite interface {
	suite.TestingSuite

	setDBSuite(dbSuite TestingDBSuite)
}

// DBTestSuite runs against the PostgreSQL database named by the TEST_DB_*
// variables and is skipped when TEST_DB_HOST is not set.
type DBTestSuite struct {
	suite.Suite

	GormDB *gorm.DB
	Config Config

	dbSuite TestingDBSuite
}

func (s *DBTestSuite) SetupSuite() {
	s.Config = s.loadDBConfig()
	s.setupDB()
}

func (s *DBTestSuite) SetupTest() {
	s.createAllTables()
}

func (s *DBTestSuite) TearDownTest() {
	s.dropAllTables()
}

func (s *DBTestSuite) AssertPartialEqual(expected any, actual any, diffOpts cmp.Option) bool {
	if cmp.Equal(expected, actual, diffOpts) {
		return true
	}

	diff := cmp.Diff(expected, actual, diffOpts)
	return s.Fail(
		fmt.Sprintf(
			"Not equal: \n"+"expected: %v\n"+"actual  : %v%v",
			expected,
			actual,
			diff,
		),
	)
}

func (s *DBTestSuite) loadDBConfig() Config {
	curDir, err := os.Getwd()
	s.Require().Nil(err)

	dotEnvPath := filepath.Join(curDir, "..", dotEnvFile)
	if _, err := os.Stat(dotEnvPath); err == nil {
		s.Require().Nil(godotenv.Load(dotEnvPath))
	}

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		s.T().Skip("TEST_DB_HOST is not set")
	}

	port, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	s.Require().Nil(err)

	user := os.Getenv("TEST_DB_USER")
	s.Require().NotEmpty(user)

	password := os.Getenv("TEST_DB_PASSWORD")
	s.Require().NotEmpty(password)

	return Config{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DBName:   "geodisasters-test",
		Schema:   "geodisasters",
	}
}

func (s *DBTestSuite) setupDB() {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		s.Config.Host,
		s.Config.Port,
		s.Config.User,
		s.Config.Password,
		s.Config.DBName,
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	s.Require().Nil(err)

	s.GormDB = gormDB

	result := s.GormDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s.Config.Schema))
	s.Require().Nil(result.Error)

	s.dropAllTables()
}

func (s *DBTestSuite) createAllTables() {
	var tables []interface{}
	if hasModelDBTestSuite, ok := s.dbSuite.(HasModelDBTestSuite); ok {
		tables = hasModelDBTestSuite.TableModels()
	}

	for _, table := range tables {
		err := s.GormDB.AutoMigrate(table)
		s.Require().Nil(err)
	}
}

func (s *DBTestSuite) dropAllTables() {
	tables := s.listTables()
	if len(tables) == 0 {
		return
	}

	result := s.GormDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", strings.Join(tables, ", ")))
	s.Require().Nil(result.Error)
}

func (s *DBTestSuite) listTables() []string {
	rows, err := s.GormDB.Raw("SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = ?", s.Config.Schema).Rows()
	s.Require().Nil(err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		err := rows.Scan(&name)
		s.Require().Nil(err)

		tables = append(tables, s.Config.Schema+"."+name)
	}

	return tables
}

func (s *DBTestSuite) setDBSuite(dbSuite TestingDBSuite) {
	s.dbSuite = dbSuite
}

func Run(t *testing.T, dbTestSuite TestingDBSuite) {
	dbTestSuite.setDBSuite(dbTestSuite)

	suite.Run(t, dbTestSuite)
}
