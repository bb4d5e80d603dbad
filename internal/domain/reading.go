package domain

import (
	"time"
)

// PollutantCount is the number of pollutant series tracked per city.
// uv_index rides along with the six weighted pollutants.
const PollutantCount = 7

// TimeLayout is the canonical timestamp form used in staged and stored
// rows. Raw API timestamps are minute-resolution local-naive values
// ("2006-01-02T15:04"); they are parsed as UTC and serialized as RFC 3339.
const TimeLayout = time.RFC3339

// APITimeLayout is the hourly timestamp format of the air-quality API.
const APITimeLayout = "2006-01-02T15:04"

// City is a configured extraction target.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

// HourlyBlock mirrors the "hourly" object of an air-quality API response:
// a time array plus one numeric array per pollutant, all positionally
// aligned. Pollutant arrays may be shorter than the time array and may
// contain JSON nulls; both are represented as nil values here.
type HourlyBlock struct {
	Time            []string   `json:"time"`
	PM10            []*float64 `json:"pm10"`
	PM25            []*float64 `json:"pm2_5"`
	CarbonMonoxide  []*float64 `json:"carbon_monoxide"`
	NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  []*float64 `json:"sulphur_dioxide"`
	Ozone           []*float64 `json:"ozone"`
	UVIndex         []*float64 `json:"uv_index"`
}

// Empty reports whether the hourly block carries no timestamps at all.
func (h HourlyBlock) Empty() bool {
	return len(h.Time) == 0
}

// RawPayload is one API response for one city, stored verbatim on disk by
// the extractor and reparsed by the transformer. Fields outside "hourly"
// are kept for traceability but not used downstream.
type RawPayload struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Hourly    HourlyBlock `json:"hourly"`
}

// Record is one staged row: a single (city, hour) observation with its
// seven pollutant values and the derived classification fields.
// Pollutant pointers are nil when the source array had no value at that
// index.
type Record struct {
	City            string
	Time            time.Time
	PM10            *float64
	PM25            *float64
	CarbonMonoxide  *float64
	NitrogenDioxide *float64
	SulphurDioxide  *float64
	Ozone           *float64
	UVIndex         *float64

	// Derived fields, filled by Derive. Pure functions of the values
	// above; recomputed identically on every transform run.
	Category string
	Severity float64
	Risk     string
	Hour     int
}

// AllPollutantsNull reports whether every one of the seven pollutant
// values is missing. Such rows are dropped during transformation.
func (r Record) AllPollutantsNull() bool {
	return r.PM10 == nil &&
		r.PM25 == nil &&
		r.CarbonMonoxide == nil &&
		r.NitrogenDioxide == nil &&
		r.SulphurDioxide == nil &&
		r.Ozone == nil &&
		r.UVIndex == nil
}

// StoredRow is a Record as it comes back from the relational store, with
// the surrogate id added and storage column names applied.
type StoredRow struct {
	ID              int64
	City            string
	Time            time.Time
	PM10            *float64
	PM25            *float64
	CarbonMonoxide  *float64
	NitrogenDioxide *float64
	SulphurDioxide  *float64
	Ozone           *float64
	UVIndex         *float64
	AQICategory     string
	SeverityScore   float64
	RiskFlag        string
	Hour            int
}
