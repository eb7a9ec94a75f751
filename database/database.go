package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const (
	SchemaName = "geodisasters"

	CTXKeyDBConfig = "DBConfig"
)

type HeadColumns struct {
	ID uint `gorm:"primarykey"`
}

type TailColumns struct {
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Date struct {
	Year  int
	Month int
	Day   int
}

// @see sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		year, month, day := v.Date()
		*d = Date{Year: year, Month: int(month), Day: day}
		return nil
	case string:
		_, err := fmt.Sscanf(v, "%04d-%02d-%02d", &d.Year, &d.Month, &d.Day)
		return err
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal string date value: ", value))
	}
}

// @see sql.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.Format(), nil
}

func (d *Date) Format() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Location is a single point feature returned for a queried date range.
type Location struct {
	HeadColumns

	FromDate     Date            `gorm:"type:date;not null;uniqueIndex:idx_locations_range_point"`
	ToDate       Date            `gorm:"type:date;not null;uniqueIndex:idx_locations_range_point"`
	Longitude    decimal.Decimal `gorm:"type:numeric(10,7);not null;uniqueIndex:idx_locations_range_point"`
	Latitude     decimal.Decimal `gorm:"type:numeric(10,7);not null;uniqueIndex:idx_locations_range_point"`
	Format       string          `gorm:"not null"`
	GeometryType string          `gorm:"not null"`
	Properties   string          `gorm:"type:jsonb;not null;default:'{}'"`

	TailColumns
}

func (Location) TableName() string {
	return SchemaName + ".locations"
}

type RawDB struct {
	db     *sql.DB
	config Config
}

func NewRawDB(config Config) *RawDB {
	return &RawDB{db: nil, config: config}
}

func (r *RawDB) Connect() error {
	db, err := sql.Open("postgres", r.DSN())
	if err != nil {
		return err
	}

	r.db = db

	return nil
}

func (r *RawDB) Init() error {
	initialized, err := r.checkInitialized()
	if err != nil {
		return fmt.Errorf("failed to check if database is initialized: %w", err)
	} else if initialized {
		return nil
	}

	if _, err := r.db.Exec(fmt.Sprintf(`CREATE SCHEMA %s`, SchemaName)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", SchemaName, err)
	}

	return nil
}

func (r *RawDB) checkInitialized() (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = $1", SchemaName).Scan(&count)
	if err != nil {
		return false, err
	}

	return count != 0, nil
}

func (r *RawDB) Shutdown() error {
	return r.db.Close()
}

func (r *RawDB) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		r.config.Host,
		r.config.Port,
		r.config.User,
		r.config.Password,
		r.config.DBName,
		func(value bool) string {
			if value {
				return "require"
			} else {
				return "disable"
			}
		}(r.config.SSLMode),
	)
}

func (r *RawDB) DB() *sql.DB {
	return r.db
}

type DB interface {
	Transaction(fc func(tx DB) error, opts ...*sql.TxOptions) error
	gorm() *gorm.DB
}

type postgresDB struct {
	gormDB *gorm.DB
}

// NewDB wraps an already opened gorm connection.
func NewDB(gormDB *gorm.DB) DB {
	return &postgresDB{gormDB: gormDB}
}

func (db *postgresDB) Transaction(fc func(tx DB) error, opts ...*sql.TxOptions) error {
	return db.gormDB.Transaction(func(tx *gorm.DB) error {
		return fc(&postgresDB{gormDB: tx})
	}, opts...)
}

func (db *postgresDB) gorm() *gorm.DB {
	return db.gormDB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  bool
}

func Connect(config Config) (DB, error) {
	rawDB := NewRawDB(config)
	gormDB, err := gorm.Open(postgres.Open(rawDB.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return NewDB(gormDB), nil
}

func UpsertLocations(db DB, records []Location) error {
	if len(records) == 0 {
		return nil
	}

	updateColumns, err := updatableColumns(&Location{})
	if err != nil {
		return err
	}

	result := db.gorm().Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "from_date"},
			{Name: "to_date"},
			{Name: "longitude"},
			{Name: "latitude"},
		},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(&records)

	return result.Error
}

// ListLocations returns the stored locations of exactly the given range.
func ListLocations(db DB, from Date, to Date) ([]Location, error) {
	var locations []Location
	result := db.gorm().
		Where("from_date = ? AND to_date = ?", from, to).
		Order("id").
		Find(&locations)
	if result.Error != nil {
		return nil, result.Error
	}

	return locations, nil
}

func updatableColumns(model interface{}) ([]string, error) {
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, err
	}

	updateColumns := []string{}
	ignoreColumns := []string{"id", "created_at"}
	for _, field := range s.Fields {
		if field.DBName == "" {
			continue
		}

		ignore := false
		for _, ignoreColumn := range ignoreColumns {
			if field.DBName == ignoreColumn {
				ignore = true
				break
			}
		}
		if ignore {
			continue
		}

		updateColumns = append(updateColumns, field.DBName)
	}

	return updateColumns, nil
}
