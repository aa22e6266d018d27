// Package config provides configuration structures and utilities for
// shopscan. Settings are layered: built-in defaults, then the .shopscan
// YAML file, then SHOPSCAN_DB_* environment variables (optionally from a
// .env file), then CLI flags.
package config
