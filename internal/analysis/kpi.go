// Package analysis computes summary metrics, risk distributions, and
// pollution trends over the full stored dataset.
package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// Summary is the single KPI row computed over all stored rows.
type Summary struct {
	CityHighestAvgPM25  string
	HighestAvgPM25      float64
	CityHighestSeverity string
	HighestSeverity     float64
	PctHighRisk         float64
	PctModerateRisk     float64
	PctLowRisk          float64
	WorstAQIHour        int
	WorstAQIHourAvgPM25 float64
}

// CityRiskShare is one city's percentage distribution across risk tiers.
type CityRiskShare struct {
	City        string
	PctLow      float64
	PctModerate float64
	PctHigh     float64
}

// TrendPoint is one long-form trend row.
type TrendPoint struct {
	City  string
	Time  time.Time
	PM25  *float64
	PM10  *float64
	Ozone *float64
}

// Summarize computes the KPI aggregate over all rows. Per-city means skip
// missing values; argmax ties resolve to the first city in ascending name
// order. Callers must not pass an empty slice — the analyzer treats an
// empty table as a soft stop before ever computing KPIs.
func Summarize(rows []domain.StoredRow) Summary {
	s := Summary{}

	pm25ByCity := map[string][]float64{}
	severityByCity := map[string][]float64{}
	for _, r := range rows {
		if r.PM25 != nil {
			pm25ByCity[r.City] = append(pm25ByCity[r.City], *r.PM25)
		}
		severityByCity[r.City] = append(severityByCity[r.City], r.SeverityScore)
	}

	s.CityHighestAvgPM25, s.HighestAvgPM25 = argmaxMean(pm25ByCity)
	s.CityHighestSeverity, s.HighestSeverity = argmaxMean(severityByCity)

	var high, moderate, low int
	for _, r := range rows {
		switch r.RiskFlag {
		case domain.RiskHigh:
			high++
		case domain.RiskModerate:
			moderate++
		case domain.RiskLow:
			low++
		}
	}
	if total := high + moderate + low; total > 0 {
		s.PctHighRisk = pct(high, total)
		s.PctModerateRisk = pct(moderate, total)
		s.PctLowRisk = pct(low, total)
	}

	s.WorstAQIHour, s.WorstAQIHourAvgPM25 = worstHour(rows)

	return s
}

// worstHour finds the hour-of-day (0-23) with the highest mean PM2.5
// across all cities. Ties resolve to the earliest hour.
func worstHour(rows []domain.StoredRow) (int, float64) {
	byHour := map[int][]float64{}
	for _, r := range rows {
		if r.PM25 != nil {
			byHour[r.Hour] = append(byHour[r.Hour], *r.PM25)
		}
	}

	worst, worstMean := 0, 0.0
	found := false
	for hour := 0; hour < 24; hour++ {
		vals, ok := byHour[hour]
		if !ok {
			continue
		}
		m := stat.Mean(vals, nil)
		if !found || m > worstMean {
			worst, worstMean = hour, m
			found = true
		}
	}
	return worst, worstMean
}

// RiskDistribution computes each city's percentage share per risk tier,
// cities in ascending name order. Tiers that never occur for a city are
// reported as 0.
func RiskDistribution(rows []domain.StoredRow) []CityRiskShare {
	counts := map[string]map[string]int{}
	for _, r := range rows {
		if counts[r.City] == nil {
			counts[r.City] = map[string]int{}
		}
		counts[r.City][r.RiskFlag]++
	}

	shares := make([]CityRiskShare, 0, len(counts))
	for _, city := range sortedCities(counts) {
		c := counts[city]
		total := c[domain.RiskLow] + c[domain.RiskModerate] + c[domain.RiskHigh]
		share := CityRiskShare{City: city}
		if total > 0 {
			share.PctLow = pct(c[domain.RiskLow], total)
			share.PctModerate = pct(c[domain.RiskModerate], total)
			share.PctHigh = pct(c[domain.RiskHigh], total)
		}
		shares = append(shares, share)
	}
	return shares
}

// Trends builds the long-form (city, time, pm2_5, pm10, ozone) table,
// sorted by city then time.
func Trends(rows []domain.StoredRow) []TrendPoint {
	points := make([]TrendPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, TrendPoint{
			City:  r.City,
			Time:  r.Time,
			PM25:  r.PM25,
			PM10:  r.PM10,
			Ozone: r.Ozone,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].City != points[j].City {
			return points[i].City < points[j].City
		}
		return points[i].Time.Before(points[j].Time)
	})
	return points
}

// argmaxMean returns the city with the highest mean value. Cities are
// scanned in ascending name order and compared strictly, so ties keep the
// alphabetically first city.
func argmaxMean(byCity map[string][]float64) (string, float64) {
	best, bestMean := "", 0.0
	found := false
	for _, city := range sortedCities(byCity) {
		vals := byCity[city]
		if len(vals) == 0 {
			continue
		}
		m := stat.Mean(vals, nil)
		if !found || m > bestMean {
			best, bestMean = city, m
			found = true
		}
	}
	return best, bestMean
}

func sortedCities[V any](m map[string]V) []string {
	cities := make([]string, 0, len(m))
	for city := range m {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
