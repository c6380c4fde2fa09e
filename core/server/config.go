package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Mode selects what the server exposes: "full" allows runs, "readonly" only reports.
	Mode string `mapstructure:"mode" default:"full"`
}

const (
	ModeFull     = "full"
	ModeReadOnly = "readonly"
)

// IsValidMode checks if the configured mode is valid.
func (c Config) IsValidMode() bool {
	switch c.Mode {
	case ModeFull, ModeReadOnly:
		return true
	default:
		return false
	}
}

// AllowsRuns reports whether reconciliation runs may be triggered over HTTP.
func (c Config) AllowsRuns() bool {
	return c.Mode == ModeFull
}
