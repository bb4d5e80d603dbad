package staging

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// stagedHeader is the staged CSV column order. Derived columns keep their
// transform-stage names; the loader owns the mapping to storage column
// names.
var stagedHeader = []string{
	"city", "time",
	"pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide", "sulphur_dioxide", "ozone", "uv_index",
	"AQI_Category", "Pollution_Severity", "Risk_Level", "hour",
}

// WriteStaged writes the full staged table to path, replacing any prior
// file. Missing pollutant values become empty cells.
func WriteStaged(path string, records []domain.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create staged dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stagedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.City,
			r.Time.UTC().Format(domain.TimeLayout),
			formatNullable(r.PM10),
			formatNullable(r.PM25),
			formatNullable(r.CarbonMonoxide),
			formatNullable(r.NitrogenDioxide),
			formatNullable(r.SulphurDioxide),
			formatNullable(r.Ozone),
			formatNullable(r.UVIndex),
			r.Category,
			strconv.FormatFloat(r.Severity, 'f', -1, 64),
			r.Risk,
			strconv.Itoa(r.Hour),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush staged file: %w", err)
	}
	return f.Close()
}

// ReadStaged reads the staged table back into records.
func ReadStaged(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read staged file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("staged file %s is empty", path)
	}
	if len(rows[0]) != len(stagedHeader) {
		return nil, fmt.Errorf("staged file %s: got %d columns, want %d", path, len(rows[0]), len(stagedHeader))
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseStagedRow(row)
		if err != nil {
			return nil, fmt.Errorf("staged row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseStagedRow(row []string) (domain.Record, error) {
	ts, err := time.Parse(domain.TimeLayout, row[1])
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse time %q: %w", row[1], err)
	}

	severity, err := strconv.ParseFloat(row[10], 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse severity %q: %w", row[10], err)
	}
	hour, err := strconv.Atoi(row[12])
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse hour %q: %w", row[12], err)
	}

	rec := domain.Record{
		City:     row[0],
		Time:     ts,
		Category: row[9],
		Severity: severity,
		Risk:     row[11],
		Hour:     hour,
	}

	for idx, dst := range []**float64{
		&rec.PM10, &rec.PM25, &rec.CarbonMonoxide, &rec.NitrogenDioxide,
		&rec.SulphurDioxide, &rec.Ozone, &rec.UVIndex,
	} {
		v, err := parseNullable(row[2+idx])
		if err != nil {
			return domain.Record{}, fmt.Errorf("parse %s %q: %w", stagedHeader[2+idx], row[2+idx], err)
		}
		*dst = v
	}

	return rec, nil
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseNullable(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
