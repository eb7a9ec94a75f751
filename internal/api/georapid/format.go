package georapid

import (
	"fmt"
	"strings"
)

type OutFormat string

const (
	Esri    OutFormat = "esri"
	GeoJSON OutFormat = "geojson"

	DefaultOutFormat = GeoJSON
)

func ParseOutFormat(value string) (OutFormat, error) {
	switch OutFormat(strings.ToLower(strings.TrimSpace(value))) {
	case Esri:
		return Esri, nil
	case GeoJSON:
		return GeoJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", value)
	}
}

func (f OutFormat) String() string {
	return string(f)
}
