// Package supabase is the relational-store adapter. It speaks the
// PostgREST surface of a hosted Postgres: best-effort schema RPC, batched
// REST inserts, and full-table selects, authenticated with a project URL
// and a service-role key.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// Row is a staged record in storage form: column names follow the
// relational schema, nil pollutant values serialize as JSON null, and the
// timestamp is canonical RFC 3339 text. The surrogate id is assigned by
// the store.
type Row struct {
	City            string   `json:"city"`
	Time            string   `json:"time"`
	PM10            *float64 `json:"pm10"`
	PM25            *float64 `json:"pm2_5"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide"`
	NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  *float64 `json:"sulphur_dioxide"`
	Ozone           *float64 `json:"ozone"`
	UVIndex         *float64 `json:"uv_index"`
	AQICategory     string   `json:"aqi_category"`
	SeverityScore   float64  `json:"severity_score"`
	RiskFlag        string   `json:"risk_flag"`
	Hour            int      `json:"hour"`
}

// Client talks to the store's REST endpoint.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a store client from the project URL and service-role key.
func NewClient(baseURL, key string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// EnsureTable applies the versioned table DDL through the execute_sql
// RPC. Callers treat failure as non-fatal: the table may already exist,
// or creation may need privileges only available in the SQL console.
func (c *Client) EnsureTable(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"query": createTableSQL})
	if err != nil {
		return fmt.Errorf("marshal schema rpc: %w", err)
	}

	if err := c.post(ctx, "/rest/v1/rpc/execute_sql", body); err != nil {
		return fmt.Errorf("schema rpc: %w", err)
	}

	c.logger.Info("schema applied", "table", TableName, "version", SchemaVersion)
	return nil
}

// InsertRows appends one batch of rows to the table.
func (c *Client) InsertRows(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	if err := c.post(ctx, "/rest/v1/"+TableName, body); err != nil {
		return fmt.Errorf("insert %d rows: %w", len(rows), err)
	}
	return nil
}

// SelectAll reads the entire table back for analysis.
func (c *Client) SelectAll(ctx context.Context) ([]domain.StoredRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/"+TableName+"?select=*", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("select request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("store error: status %d: %s", resp.StatusCode, body)
	}

	var wire []wireRow
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	rows := make([]domain.StoredRow, 0, len(wire))
	for _, w := range wire {
		row, err := w.toStoredRow()
		if err != nil {
			c.logger.Warn("skipping unreadable stored row", "id", w.ID, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store error: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
}

// wireRow is the select response shape. The time column comes back as
// text whose exact form depends on the column type, so it is parsed
// leniently in toStoredRow.
type wireRow struct {
	ID              int64    `json:"id"`
	City            string   `json:"city"`
	Time            string   `json:"time"`
	PM10            *float64 `json:"pm10"`
	PM25            *float64 `json:"pm2_5"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide"`
	NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  *float64 `json:"sulphur_dioxide"`
	Ozone           *float64 `json:"ozone"`
	UVIndex         *float64 `json:"uv_index"`
	AQICategory     string   `json:"aqi_category"`
	SeverityScore   float64  `json:"severity_score"`
	RiskFlag        string   `json:"risk_flag"`
	Hour            int      `json:"hour"`
}

var storedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (w wireRow) toStoredRow() (domain.StoredRow, error) {
	var ts time.Time
	var err error
	for _, layout := range storedTimeLayouts {
		ts, err = time.Parse(layout, w.Time)
		if err == nil {
			break
		}
	}
	if err != nil {
		return domain.StoredRow{}, fmt.Errorf("parse time %q: %w", w.Time, err)
	}

	return domain.StoredRow{
		ID:              w.ID,
		City:            w.City,
		Time:            ts.UTC(),
		PM10:            w.PM10,
		PM25:            w.PM25,
		CarbonMonoxide:  w.CarbonMonoxide,
		NitrogenDioxide: w.NitrogenDioxide,
		SulphurDioxide:  w.SulphurDioxide,
		Ozone:           w.Ozone,
		UVIndex:         w.UVIndex,
		AQICategory:     w.AQICategory,
		SeverityScore:   w.SeverityScore,
		RiskFlag:        w.RiskFlag,
		Hour:            w.Hour,
	}, nil
}
