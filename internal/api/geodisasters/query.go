// Package geodisasters queries the GeoDisasters service for the most common
// locations related to natural disasters.
package geodisasters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"geodisasters/internal/api/georapid"
)

var (
	// FloorDate is the earliest date the service has aggregated data for.
	FloorDate = Date{Year: 2023, Month: 5, Day: 24}
)

// ServiceClient provides the endpoint and credentials of the service.
type ServiceClient interface {
	URL() string
	AuthHeaders() map[string]string
}

// QueryResult is the decoded response body. Its shape is defined by the
// service and is returned as-is.
type QueryResult map[string]interface{}

type QueryRequest struct {
	From   Date
	To     Date
	Format georapid.OutFormat
}

func NewQueryRequest(from Date, to Date) QueryRequest {
	return QueryRequest{
		From:   from,
		To:     to,
		Format: georapid.DefaultOutFormat,
	}
}

func (r *QueryRequest) WithFormat(format georapid.OutFormat) *QueryRequest {
	r.Format = format

	return r
}

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

type API struct {
	httpClient httpClient
	now        func() time.Time
}

func NewAPI() *API {
	return &API{httpClient: &http.Client{}, now: time.Now}
}

// Query returns the most common locations related to natural disasters
// between req.From and req.To. The range must lie between FloorDate and
// yesterday (UTC). An inverted range is sent to the service unchanged.
func (a *API) Query(ctx context.Context, client ServiceClient, req QueryRequest) (QueryResult, error) {
	if req.From.Before(FloorDate) {
		return nil, newFromDateError(req.From, FloorDate)
	}

	yesterday := a.yesterday()
	if req.To.After(yesterday) {
		return nil, newToDateError(req.To, yesterday)
	}

	format := req.Format
	if format == "" {
		format = georapid.DefaultOutFormat
	}

	httpReq, err := newRequestBuilder(http.MethodGet, client.URL(), "query").
		withHeaders(client.AuthHeaders()).
		addQueryParameter("from", req.From.Format()).
		addQueryParameter("to", req.To.Format()).
		addQueryParameter("format", format.String()).
		build(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, newHTTPStatusError(httpReq, resp, payload)
	}

	bodyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(bodyData, &result); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	return result, nil
}

func (a *API) yesterday() Date {
	today := NewDateFromTime(a.now().UTC())

	return today.AddDays(-1)
}

func newHTTPStatusError(req *http.Request, resp *http.Response, body []byte) *HTTPStatusError {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     status,
		URL:        req.URL.String(),
		Body:       body,
	}
}
