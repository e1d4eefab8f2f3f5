package config

// Application constants
const (
	AppName = "mill-discharge-dashboard"

	// File names (relative to the data directory)
	DefaultDataDir     = "data"
	DefaultLogsDir     = "logs"
	DefaultInputFile   = "dataPumps.xlsx"
	DefaultOutputFile  = "processed_pumps.csv"
	DefaultParquetFile = "processed_pumps.parquet"
)
