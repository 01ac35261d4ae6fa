package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// IsSet reports whether the variable is present in the environment,
// even when set to an empty string.
func IsSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
