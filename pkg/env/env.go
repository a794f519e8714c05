package env

import "os"

// Get returns the named environment variable, falling back when unset or
// empty. Structured config goes through envconfig; this exists for the few
// process-level knobs read before config loads.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
