package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"geodisasters/database"
	"geodisasters/internal/api/geodisasters"
)

const (
	geometryTypePoint     = "Point"
	esriGeometryTypePoint = "esriGeometryPoint"

	// scale of the numeric longitude/latitude columns
	coordinatePlaces = 7
)

// convertLocations turns the point features of a GeoJSON FeatureCollection or
// an Esri FeatureSet into location records. Features without a point geometry
// are counted as skipped, as are points that coincide with an earlier one
// once rounded to the precision of the location columns.
func convertLocations(result geodisasters.QueryResult, req geodisasters.QueryRequest) ([]database.Location, int, error) {
	features := toSlice(result["features"])

	records := make([]database.Location, 0, len(features))
	skipped := 0
	for _, raw := range features {
		feature := toMap(raw)
		if feature == nil {
			skipped++
			continue
		}

		geometryType, lon, lat, ok := pointOf(result, feature)
		if !ok {
			skipped++
			continue
		}

		properties, err := propertiesOf(feature)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, database.Location{
			FromDate:     convertDate(req.From),
			ToDate:       convertDate(req.To),
			Longitude:    decimal.NewFromFloat(lon).Round(coordinatePlaces),
			Latitude:     decimal.NewFromFloat(lat).Round(coordinatePlaces),
			Format:       req.Format.String(),
			GeometryType: geometryType,
			Properties:   properties,
		})
	}

	unique := lo.UniqBy(records, func(record database.Location) string {
		return record.Longitude.String() + "," + record.Latitude.String()
	})
	skipped += len(records) - len(unique)

	return unique, skipped, nil
}

func pointOf(result geodisasters.QueryResult, feature map[string]interface{}) (string, float64, float64, bool) {
	geometry := toMap(feature["geometry"])
	if geometry == nil {
		return "", 0, 0, false
	}

	// GeoJSON
	if coordinates, found := geometry["coordinates"]; found {
		if geometry["type"] != geometryTypePoint {
			return "", 0, 0, false
		}

		position := toSlice(coordinates)
		if len(position) < 2 {
			return "", 0, 0, false
		}

		lon, lonOK := position[0].(float64)
		lat, latOK := position[1].(float64)

		return geometryTypePoint, lon, lat, lonOK && latOK
	}

	// Esri JSON
	if geometryType, found := result["geometryType"]; found && geometryType != esriGeometryTypePoint {
		return "", 0, 0, false
	}
	x, xOK := geometry["x"].(float64)
	y, yOK := geometry["y"].(float64)

	return esriGeometryTypePoint, x, y, xOK && yOK
}

func propertiesOf(feature map[string]interface{}) (string, error) {
	properties, found := feature["properties"]
	if !found {
		properties = feature["attributes"]
	}
	if properties == nil {
		return "{}", nil
	}

	data, err := json.Marshal(properties)
	if err != nil {
		return "", fmt.Errorf("failed to marshal feature properties: %w", err)
	}

	return string(data), nil
}

func convertDate(date geodisasters.Date) database.Date {
	return database.Date{Year: date.Year, Month: date.Month, Day: date.Day}
}

func toMap(value interface{}) map[string]interface{} {
	m, _ := value.(map[string]interface{})

	return m
}

func toSlice(value interface{}) []interface{} {
	s, _ := value.([]interface{})

	return s
}
