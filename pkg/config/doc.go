// Package config loads environment-based configuration into typed structs.
//
// Every infrastructure package in this module declares its own Config struct
// with `env` tags and sane defaults; this package provides the single entry
// point that parses them. A .env file in the working directory is loaded once,
// before the first Parse call, and is optional.
//
// Usage:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// MustLoad panics on failure and is intended for process startup paths where
// a missing required variable should abort immediately.
package config
