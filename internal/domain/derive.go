package domain

// AQI category labels derived from PM2.5.
const (
	CategoryGood          = "Good"
	CategoryModerate      = "Moderate"
	CategoryUnhealthy     = "Unhealthy"
	CategoryVeryUnhealthy = "Very Unhealthy"
	CategoryHazardous     = "Hazardous"
)

// Risk tier labels derived from the severity score.
const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

// RiskLabels lists the three tiers in ascending severity order.
var RiskLabels = []string{RiskLow, RiskModerate, RiskHigh}

// Severity weights per pollutant. uv_index carries no weight.
const (
	weightPM25            = 5
	weightPM10            = 3
	weightNitrogenDioxide = 4
	weightSulphurDioxide  = 4
	weightCarbonMonoxide  = 2
	weightOzone           = 3
)

// Derive fills the computed fields of a record from its pollutant values
// and timestamp. It is a pure function of a single record; the returned
// record is identical to the input except for Category, Severity, Risk,
// and Hour.
func Derive(r Record) Record {
	r.Category = CategoryForPM25(r.PM25)
	r.Severity = SeverityScore(r)
	r.Risk = RiskForSeverity(r.Severity)
	r.Hour = r.Time.Hour()
	return r
}

// CategoryForPM25 maps a PM2.5 concentration to its AQI category.
// Boundary values map to the lower category (50 is still "Good").
// A nil PM2.5 is evaluated as 0 and therefore "Good" — the same
// missing-as-zero convention the severity sum uses.
func CategoryForPM25(pm25 *float64) string {
	v := orZero(pm25)
	switch {
	case v <= 50:
		return CategoryGood
	case v <= 100:
		return CategoryModerate
	case v <= 200:
		return CategoryUnhealthy
	case v <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// SeverityScore computes the weighted pollution burden of a record,
// treating any missing pollutant as 0. An all-null record scores 0.
func SeverityScore(r Record) float64 {
	return weightPM25*orZero(r.PM25) +
		weightPM10*orZero(r.PM10) +
		weightNitrogenDioxide*orZero(r.NitrogenDioxide) +
		weightSulphurDioxide*orZero(r.SulphurDioxide) +
		weightCarbonMonoxide*orZero(r.CarbonMonoxide) +
		weightOzone*orZero(r.Ozone)
}

// RiskForSeverity thresholds a severity score into a risk tier.
// Boundaries are exclusive: exactly 400 is Moderate, exactly 200 is Low.
func RiskForSeverity(severity float64) string {
	switch {
	case severity > 400:
		return RiskHigh
	case severity > 200:
		return RiskModerate
	default:
		return RiskLow
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
