package supabase

// TableName is the target table for staged air-quality rows.
const TableName = "air_quality_data"

// SchemaVersion identifies the DDL revision applied by EnsureTable.
// Bump it together with createTableSQL when the storage schema changes.
const SchemaVersion = 1

// createTableSQL is the versioned schema definition owned by this
// adapter. Reruns append rows; there is deliberately no uniqueness
// constraint on (city, time).
const createTableSQL = `CREATE TABLE IF NOT EXISTS public.` + TableName + ` (
    id BIGSERIAL PRIMARY KEY,
    city TEXT,
    time TIMESTAMP,
    pm10 DOUBLE PRECISION,
    pm2_5 DOUBLE PRECISION,
    carbon_monoxide DOUBLE PRECISION,
    nitrogen_dioxide DOUBLE PRECISION,
    sulphur_dioxide DOUBLE PRECISION,
    ozone DOUBLE PRECISION,
    uv_index DOUBLE PRECISION,
    aqi_category TEXT,
    severity_score DOUBLE PRECISION,
    risk_flag TEXT,
    hour INTEGER
);`

// CreateTableDDL returns the DDL text for manual application when the
// schema RPC is unavailable or lacks privileges.
func CreateTableDDL() string {
	return createTableSQL
}
