package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"geodisasters/database"
	"geodisasters/internal/api/geodisasters"
)

const (
	SourceGeoDisasters = "geodisasters"

	chunkSize = 100

	schemeFile = "file"
	schemeDB   = "db"
)

type Querier interface {
	Query(ctx context.Context, client geodisasters.ServiceClient, req geodisasters.QueryRequest) (geodisasters.QueryResult, error)
}

type FetchDataTaskUseCase struct {
	querier Querier
	client  geodisasters.ServiceClient
	openDB  func() (database.DB, error)
	now     func() time.Time
}

// NewFetchDataTaskUseCase builds the use case. openDB is only called when the
// destination is the database.
func NewFetchDataTaskUseCase(querier Querier, client geodisasters.ServiceClient, openDB func() (database.DB, error)) *FetchDataTaskUseCase {
	return &FetchDataTaskUseCase{
		querier: querier,
		client:  client,
		openDB:  openDB,
		now:     time.Now,
	}
}

func (uc *FetchDataTaskUseCase) FetchData(ctx context.Context, req *FetchDataRequest) (*FetchDataResponse, error) {
	if req.Source != SourceGeoDisasters {
		return nil, fmt.Errorf("unsupported source: %s", req.Source)
	}

	dest, err := url.Parse(req.DestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid destination url: %w", err)
	}
	if dest.Scheme != schemeFile && dest.Scheme != schemeDB {
		return nil, fmt.Errorf("unsupported destination: %s", req.DestURL)
	}

	queryReq := uc.makeQueryRequest(req)

	log.WithFields(log.Fields{
		"from":   queryReq.From.Format(),
		"to":     queryReq.To.Format(),
		"format": queryReq.Format.String(),
	}).Info("querying disaster locations")

	result, err := uc.querier.Query(ctx, uc.client, queryReq)
	if err != nil {
		return nil, err
	}

	resp := &FetchDataResponse{Features: len(toSlice(result["features"]))}

	switch dest.Scheme {
	case schemeFile:
		if err := writeFile(strings.Replace(req.DestURL, "file://", "", 1), result); err != nil {
			return nil, err
		}
	case schemeDB:
		stored, skipped, err := uc.store(result, queryReq)
		if err != nil {
			return nil, err
		}
		resp.Stored = stored
		resp.Skipped = skipped
	}

	log.WithFields(log.Fields{
		"dest":     req.DestURL,
		"features": resp.Features,
		"stored":   resp.Stored,
		"skipped":  resp.Skipped,
	}).Info("disaster locations exported")

	return resp, nil
}

func (uc *FetchDataTaskUseCase) makeQueryRequest(req *FetchDataRequest) geodisasters.QueryRequest {
	from := lo.TernaryF(
		req.StartDate != nil,
		func() geodisasters.Date { return geodisasters.NewDateFromTime(*req.StartDate) },
		func() geodisasters.Date { return geodisasters.FloorDate },
	)
	to := lo.TernaryF(
		req.EndDate != nil,
		func() geodisasters.Date { return geodisasters.NewDateFromTime(*req.EndDate) },
		func() geodisasters.Date { return geodisasters.NewDateFromTime(uc.now().UTC()).AddDays(-1) },
	)

	queryReq := geodisasters.NewQueryRequest(from, to)
	if req.Format != "" {
		queryReq.WithFormat(req.Format)
	}

	return queryReq
}

func (uc *FetchDataTaskUseCase) store(result geodisasters.QueryResult, req geodisasters.QueryRequest) (int, int, error) {
	records, skipped, err := convertLocations(result, req)
	if err != nil {
		return 0, 0, err
	}
	if skipped > 0 {
		log.WithField("skipped", skipped).Warn("features without a distinct point geometry were skipped")
	}

	db, err := uc.openDB()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Transaction(func(tx database.DB) error {
		for _, chunk := range lo.Chunk(records, chunkSize) {
			if err := database.UpsertLocations(tx, chunk); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store locations: %w", err)
	}

	return len(records), skipped, nil
}

func writeFile(path string, result geodisasters.QueryResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}
