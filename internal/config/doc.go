// Package config loads, normalizes, and validates the TOML
// configuration that drives transcription runs. Loading always starts
// from defaults so a missing file yields a fully working setup.
package config
