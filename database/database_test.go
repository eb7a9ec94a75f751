package database

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"geodisasters/internal/testutils"
)

func TestDateScan(t *testing.T) {
	input := "2023-01-02"

	actual := Date{}
	err := actual.Scan(input)

	assert.Nil(t, err)
	assert.Equal(t, Date{Year: 2023, Month: 1, Day: 2}, actual)
}

func TestDateScanUnsupported(t *testing.T) {
	actual := Date{}
	err := actual.Scan(20230102)

	assert.Error(t, err)
}

func TestDateValue(t *testing.T) {
	date := Date{Year: 2023, Month: 1, Day: 2}

	actual, err := date.Value()

	assert.Nil(t, err)
	assert.Equal(t, "2023-01-02", actual)
}

func TestRawDBDSN(t *testing.T) {
	rawDB := NewRawDB(Config{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "password",
		DBName:   "geodisasters",
	})

	assert.Equal(t, "host=localhost port=5432 user=user password=password dbname=geodisasters sslmode=disable", rawDB.DSN())
}

func TestLocationTableName(t *testing.T) {
	assert.Equal(t, "geodisasters.locations", Location{}.TableName())
}

func TestUpdatableColumns(t *testing.T) {
	columns, err := updatableColumns(&Location{})

	assert.Nil(t, err)
	assert.NotContains(t, columns, "id")
	assert.NotContains(t, columns, "created_at")
	assert.Contains(t, columns, "properties")
	assert.Contains(t, columns, "updated_at")
}

type DBTestSuite struct {
	testutils.DBTestSuite
}

func (s *DBTestSuite) TableModels() []interface{} {
	return []interface{}{
		&Location{},
	}
}

func (s *DBTestSuite) db() DB {
	return NewDB(s.GormDB)
}

func Test_DBTestSuite(t *testing.T) {
	testutils.Run(t, new(DBTestSuite))
}

func (s *DBTestSuite) Test_UpsertLocations() {
	from := Date{Year: 2023, Month: 6, Day: 1}
	to := Date{Year: 2023, Month: 6, Day: 2}
	locations := []Location{
		{
			FromDate:     from,
			ToDate:       to,
			Longitude:    decimal.RequireFromString("13.4050000"),
			Latitude:     decimal.RequireFromString("52.5200000"),
			Format:       "geojson",
			GeometryType: "Point",
			Properties:   `{"name": "Berlin"}`,
		},
	}

	err := UpsertLocations(s.db(), locations)
	s.Nil(err)

	actual, err := ListLocations(s.db(), from, to)
	s.Nil(err)

	s.Equal(1, len(actual))
	diffOpts := cmp.Options{
		cmpopts.IgnoreFields(Location{}, "ID", "CreatedAt", "UpdatedAt", "Properties"),
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
	}
	for i := range actual {
		s.AssertPartialEqual(locations[i], actual[i], diffOpts)
	}
}

func (s *DBTestSuite) Test_UpsertLocations_UpdatesExistingPoint() {
	from := Date{Year: 2023, Month: 6, Day: 1}
	to := Date{Year: 2023, Month: 6, Day: 2}
	location := Location{
		FromDate:     from,
		ToDate:       to,
		Longitude:    decimal.RequireFromString("13.4050000"),
		Latitude:     decimal.RequireFromString("52.5200000"),
		Format:       "geojson",
		GeometryType: "Point",
		Properties:   `{"count": 1}`,
	}

	s.Nil(UpsertLocations(s.db(), []Location{location}))

	location.Properties = `{"count": 2}`
	s.Nil(UpsertLocations(s.db(), []Location{location}))

	actual, err := ListLocations(s.db(), from, to)
	s.Nil(err)
	s.Equal(1, len(actual))
	s.JSONEq(`{"count": 2}`, actual[0].Properties)
}

func (s *DBTestSuite) Test_Transaction_Rollback() {
	from := Date{Year: 2023, Month: 6, Day: 1}
	to := Date{Year: 2023, Month: 6, Day: 2}

	err := s.db().Transaction(func(tx DB) error {
		if err := UpsertLocations(tx, []Location{{
			FromDate:     from,
			ToDate:       to,
			Longitude:    decimal.NewFromInt(1),
			Latitude:     decimal.NewFromInt(2),
			Format:       "geojson",
			GeometryType: "Point",
			Properties:   `{}`,
		}}); err != nil {
			return err
		}

		return assert.AnError
	})
	s.ErrorIs(err, assert.AnError)

	actual, err := ListLocations(s.db(), from, to)
	s.Nil(err)
	s.Empty(actual)
}
