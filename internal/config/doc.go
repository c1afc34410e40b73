// Package config loads and validates application settings.
//
// Values come from a .env file, an optional config.yaml and CARDS_ prefixed
// environment variables, with later sources taking precedence.
package config
