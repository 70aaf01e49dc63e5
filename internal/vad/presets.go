package vad

import (
	"fmt"
	"strings"
)

// Parameters are the voice-activity-detection knobs understood by the
// recognition engine's built-in VAD filter.
type Parameters struct {
	// Threshold is the speech probability cutoff in [0,1]; higher is stricter.
	Threshold float64
	// MinSpeechMs is the shortest run of audio treated as speech.
	MinSpeechMs int
	// MinSilenceMs is the shortest run of audio treated as silence.
	MinSilenceMs int
	// SpeechPadMs extends detected speech on both sides so sentence edges
	// survive the filter.
	SpeechPadMs int
}

// Preset names recognized by Lookup.
const (
	PresetMeeting      = "meeting"
	PresetPresentation = "presentation"
	PresetNoisy        = "noisy"
	PresetDefault      = "default"
)

var presets = map[string]Parameters{
	PresetMeeting:      {Threshold: 0.5, MinSpeechMs: 250, MinSilenceMs: 500, SpeechPadMs: 400},
	PresetPresentation: {Threshold: 0.6, MinSpeechMs: 500, MinSilenceMs: 1000, SpeechPadMs: 300},
	PresetNoisy:        {Threshold: 0.7, MinSpeechMs: 500, MinSilenceMs: 800, SpeechPadMs: 500},
	PresetDefault:      {Threshold: 0.5, MinSpeechMs: 250, MinSilenceMs: 500, SpeechPadMs: 400},
}

// Lookup resolves a preset name to its parameters. Unknown names are an
// error so configuration typos surface before any work starts.
func Lookup(name string) (Parameters, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = PresetDefault
	}
	params, ok := presets[key]
	if !ok {
		return Parameters{}, fmt.Errorf("vad: unknown preset %q (expected meeting, presentation, noisy, or default)", name)
	}
	return params, nil
}

// Names returns the recognized preset names for help text and validation.
func Names() []string {
	return []string{PresetMeeting, PresetPresentation, PresetNoisy, PresetDefault}
}
