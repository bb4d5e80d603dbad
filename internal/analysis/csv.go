package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// Output filenames under the processed directory.
const (
	SummaryFile = "summary_metrics.csv"
	RiskFile    = "city_risk_distribution.csv"
	TrendsFile  = "pollution_trends.csv"
)

// WriteSummaryCSV writes the single-row KPI summary.
func WriteSummaryCSV(path string, s Summary) error {
	return writeCSV(path, [][]string{
		{
			"city_highest_avg_pm2_5", "highest_avg_pm2_5_value",
			"city_highest_severity", "highest_severity_value",
			"pct_high_risk", "pct_moderate_risk", "pct_low_risk",
			"worst_aqi_hour", "worst_aqi_hour_avg_pm2_5",
		},
		{
			s.CityHighestAvgPM25, formatFloat(s.HighestAvgPM25),
			s.CityHighestSeverity, formatFloat(s.HighestSeverity),
			formatFloat(s.PctHighRisk), formatFloat(s.PctModerateRisk), formatFloat(s.PctLowRisk),
			strconv.Itoa(s.WorstAQIHour), formatFloat(s.WorstAQIHourAvgPM25),
		},
	})
}

// WriteRiskCSV writes the per-city risk distribution table.
func WriteRiskCSV(path string, shares []CityRiskShare) error {
	rows := [][]string{{"city", "pct_low_risk", "pct_moderate_risk", "pct_high_risk"}}
	for _, s := range shares {
		rows = append(rows, []string{
			s.City, formatFloat(s.PctLow), formatFloat(s.PctModerate), formatFloat(s.PctHigh),
		})
	}
	return writeCSV(path, rows)
}

// WriteTrendsCSV writes the long-form trend table.
func WriteTrendsCSV(path string, points []TrendPoint) error {
	rows := [][]string{{"city", "time", "pm2_5", "pm10", "ozone"}}
	for _, p := range points {
		rows = append(rows, []string{
			p.City,
			p.Time.UTC().Format(domain.TimeLayout),
			formatNullable(p.PM25),
			formatNullable(p.PM10),
			formatNullable(p.Ozone),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
