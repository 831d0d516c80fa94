// Package config holds the application configuration, loaded from the
// environment (optionally seeded from a .env file).
package config

import (
	"time"
)

// DB carries the relational store connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Jwt carries token signing settings.
type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// Auth groups authentication settings.
type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// RateLimit configures the per-client request limiter.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Log configures the structured logger.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[contabank]"`
}

// Server configures the HTTP listener.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// Account carries account seeding policy. OpeningBalance is a decimal string
// credited to every newly registered account.
type Account struct {
	OpeningBalance string `envconfig:"OPENING_BALANCE" default:"1000"`
}

// App is the root configuration.
type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Account   *Account   `envconfig:"ACCOUNT"`
}
