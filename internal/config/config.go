package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses lease and token durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// leases, ints for costs and TTLs.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	SessionSecret string        // secret used to sign session tokens
	SessionTTLMin int           // session token time-to-live in minutes
	BcryptCost    int           // bcrypt cost for PIN hashing
	SeatLockTTL   time.Duration // lease duration of one seat lock
	PinMaxFails   int           // PIN failures tolerated before lockout
	PinLockout    time.Duration // lockout window after too many PIN failures
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The seat lock lease
// has no built-in default: SEAT_LOCK_TTL must be set explicitly so that
// the hold window is a deliberate operational choice.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),                  // environment (dev/test/prod)
		Port:          must("APP_PORT"),                 // port to bind the HTTP server
		DBUser:        must("DB_USER"),                  // database user
		DBPass:        os.Getenv("DB_PASS"),             // database password (empty allowed)
		DBHost:        must("DB_HOST"),                  // database host
		DBPort:        must("DB_PORT"),                  // database port
		DBName:        must("DB_NAME"),                  // database name
		SessionSecret: must("SESSION_SECRET"),           // secret for signing session tokens
		SessionTTLMin: mustInt("SESSION_TOKEN_TTL_MIN"), // TTL for session tokens in minutes
		BcryptCost:    mustInt("BCRYPT_COST"),           // bcrypt cost factor for PIN hashes
		SeatLockTTL:   mustDur("SEAT_LOCK_TTL"),         // lease duration for seat locks
		PinMaxFails:   envInt("PIN_MAX_FAILS", 5),       // PIN failures before lockout
		PinLockout:    envDur("PIN_LOCKOUT", 15*time.Minute), // lockout window
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustDur is like must() but parses the value as a Go duration string such
// as "90s" or "3m".  Invalid values abort startup.
func mustDur(key string) time.Duration {
	s := must(key)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
