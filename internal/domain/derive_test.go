package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestCategoryForPM25(t *testing.T) {
	tests := []struct {
		name     string
		pm25     *float64
		expected string
	}{
		{"nil treated as zero", nil, CategoryGood},
		{"zero", fp(0), CategoryGood},
		{"boundary 50", fp(50), CategoryGood},
		{"just above 50", fp(50.1), CategoryModerate},
		{"boundary 100", fp(100), CategoryModerate},
		{"boundary 200", fp(200), CategoryUnhealthy},
		{"boundary 300", fp(300), CategoryVeryUnhealthy},
		{"above 300", fp(300.5), CategoryHazardous},
		{"extreme", fp(999), CategoryHazardous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategoryForPM25(tt.pm25))
		})
	}
}

func TestSeverityScore(t *testing.T) {
	t.Run("weighted sum over all six pollutants", func(t *testing.T) {
		r := Record{
			PM25:            fp(10),
			PM10:            fp(20),
			NitrogenDioxide: fp(5),
			SulphurDioxide:  fp(4),
			CarbonMonoxide:  fp(100),
			Ozone:           fp(30),
		}
		// 5*10 + 3*20 + 4*5 + 4*4 + 2*100 + 3*30 = 436
		assert.Equal(t, 436.0, SeverityScore(r))
	})

	t.Run("missing pollutants contribute zero", func(t *testing.T) {
		r := Record{PM25: fp(40)}
		assert.Equal(t, 200.0, SeverityScore(r))
	})

	t.Run("all null scores zero and classifies Low Risk", func(t *testing.T) {
		r := Record{}
		s := SeverityScore(r)
		assert.Equal(t, 0.0, s)
		assert.Equal(t, RiskLow, RiskForSeverity(s))
	})

	t.Run("uv_index carries no weight", func(t *testing.T) {
		assert.Equal(t, 0.0, SeverityScore(Record{UVIndex: fp(11)}))
	})
}

func TestRiskForSeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity float64
		expected string
	}{
		{"zero", 0, RiskLow},
		{"boundary 200 stays low", 200, RiskLow},
		{"just above 200", 201, RiskModerate},
		{"boundary 400 stays moderate", 400, RiskModerate},
		{"just above 400", 401, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RiskForSeverity(tt.severity))
		})
	}
}

func TestDerive(t *testing.T) {
	r := Record{
		City: "Delhi",
		Time: time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC),
		PM25: fp(120),
	}

	derived := Derive(r)

	assert.Equal(t, CategoryUnhealthy, derived.Category)
	assert.Equal(t, 600.0, derived.Severity)
	assert.Equal(t, RiskHigh, derived.Risk)
	assert.Equal(t, 14, derived.Hour)

	// Input fields pass through untouched.
	assert.Equal(t, r.City, derived.City)
	assert.Equal(t, r.Time, derived.Time)
	assert.Equal(t, r.PM25, derived.PM25)
}

func TestDeriveIsDeterministic(t *testing.T) {
	r := Record{
		City: "Mumbai",
		Time: time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC),
		PM25: fp(55),
		PM10: fp(80),
	}

	assert.Equal(t, Derive(r), Derive(r))
}

func TestAllPollutantsNull(t *testing.T) {
	assert.True(t, Record{City: "Delhi"}.AllPollutantsNull())
	assert.False(t, Record{UVIndex: fp(3)}.AllPollutantsNull())
	assert.False(t, Record{Ozone: fp(0)}.AllPollutantsNull())
}
