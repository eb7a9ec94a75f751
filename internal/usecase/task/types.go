package usecase

import (
	"time"

	"geodisasters/internal/api/georapid"
)

type FetchDataRequest struct {
	Source    string
	Format    georapid.OutFormat
	DestURL   string
	StartDate *time.Time
	EndDate   *time.Time
}

type FetchDataResponse struct {
	Features int
	Stored   int
	Skipped  int
}
