package util

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EvaluatorOpenAI = "openai"
	EvaluatorStatic = "static"
)

// DefaultPeriod 未指定时间段时使用
const DefaultPeriod = "30 days"
