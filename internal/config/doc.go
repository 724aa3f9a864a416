// Package config loads and validates the TOML configuration for the render
// commands: image-service connection settings, output defaults, and logging.
package config
