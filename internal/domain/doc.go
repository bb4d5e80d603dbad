// Package domain models hourly urban air-quality readings.
//
// # Data Source
//
// Readings come from the Open-Meteo air-quality API
// (https://air-quality-api.open-meteo.com/v1/air-quality). A response
// carries an "hourly" object with a time array and one numeric array per
// requested pollutant, all positionally aligned: index i of every array
// describes the same hour. Seven series are requested per city:
//
//	pm10, pm2_5, carbon_monoxide, nitrogen_dioxide,
//	sulphur_dioxide, ozone, uv_index
//
// Arrays may be shorter than the time array or contain nulls; both cases
// surface as nil pollutant values on a [Record]. A record where all seven
// values are nil carries no information and is dropped.
//
// # Derived Fields
//
// Three classifications are computed per record by [Derive]:
//
//	Category — step function of PM2.5, boundaries inclusive on the low side:
//	  ≤50 Good | ≤100 Moderate | ≤200 Unhealthy | ≤300 Very Unhealthy | else Hazardous
//	Severity — weighted pollutant sum, missing values as 0:
//	  5·pm2_5 + 3·pm10 + 4·nitrogen_dioxide + 4·sulphur_dioxide + 2·carbon_monoxide + 3·ozone
//	Risk — severity tiers, boundaries exclusive:
//	  >400 High Risk | >200 Moderate Risk | else Low Risk
//
// uv_index is retained in the row but carries no severity weight.
//
// A nil PM2.5 is classified as "Good": the category function adopts the
// same missing-as-zero convention as the severity sum, so an all-null row
// (if it survived filtering) would read Good / 0 / Low Risk.
package domain
