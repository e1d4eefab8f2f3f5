package contracts

import "runtime"

// Release identifiers. Bump DataFormatVersion whenever the canonical CSV
// header or value formatting changes.
const (
	Version           = "0.1.0-alpha.1"
	VersionStage      = "alpha"
	DataFormatVersion = "v1"
	APIVersion        = "v1"
)

// Stamped by the release build with -ldflags "-X".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what /api/version and the version subcommand report.
type VersionInfo struct {
	Version      string `json:"version"`
	Stage        string `json:"stage"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		Stage:        VersionStage,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}
}
