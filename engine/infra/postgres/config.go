package postgres

import "time"

// Config holds PostgreSQL connection settings for the driver.
type Config struct {
	ConnString  string
	MaxConns    int
	PingTimeout time.Duration
}
