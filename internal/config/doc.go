// Package config provides centralized configuration management for the
// pump dashboard and the extraction CLI.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in increasing order
// of precedence:
//
//	1. Default values (Default)
//	2. A YAML file (config.yaml or configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern PUMPS_<SECTION>_<FIELD>:
//
//	PUMPS_SERVER_PORT=8080
//	PUMPS_LOGGING_LEVEL=debug
//	PUMPS_PATHS_DATA_DIR=/srv/pumps/data
//	PUMPS_SOURCE_KIND=sheets
//	PUMPS_EXPORT_PARQUET=true
//
// # Path Management
//
// Config.Resolve turns the configured locations into absolute paths. By
// default the raw workbook is data/dataPumps.xlsx and the canonical table is
// data/processed_pumps.csv, both relative to the working directory.
package config
