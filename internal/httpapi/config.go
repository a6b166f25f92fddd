package httpapi

import "time"

// reloadTimeout bounds a POST /api/reload cycle. Zero means no additional
// timeout beyond server/connection timeouts.
var reloadTimeout time.Duration

// SetReloadTimeout sets the reload timeout (0 disables).
func SetReloadTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	reloadTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

func corsOrDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
