// Package vad holds voice-activity-detection parameter presets passed to
// the recognition engine. Presets tune the silence/speech thresholds for
// common recording situations (meetings, presentations, noisy rooms).
package vad
