package vad

import "testing"

func TestLookupPresets(t *testing.T) {
	tests := []struct {
		name string
		want Parameters
	}{
		{PresetMeeting, Parameters{Threshold: 0.5, MinSpeechMs: 250, MinSilenceMs: 500, SpeechPadMs: 400}},
		{PresetPresentation, Parameters{Threshold: 0.6, MinSpeechMs: 500, MinSilenceMs: 1000, SpeechPadMs: 300}},
		{PresetNoisy, Parameters{Threshold: 0.7, MinSpeechMs: 500, MinSilenceMs: 800, SpeechPadMs: 500}},
		{PresetDefault, Parameters{Threshold: 0.5, MinSpeechMs: 250, MinSilenceMs: 500, SpeechPadMs: 400}},
	}
	for _, tc := range tests {
		got, err := Lookup(tc.name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("Lookup(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestLookupNormalizesAndDefaults(t *testing.T) {
	got, err := Lookup("  MEETING ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want, _ := Lookup(PresetMeeting)
	if got != want {
		t.Fatalf("case-insensitive lookup mismatch: %+v vs %+v", got, want)
	}

	empty, err := Lookup("")
	if err != nil {
		t.Fatalf("Lookup empty: %v", err)
	}
	def, _ := Lookup(PresetDefault)
	if empty != def {
		t.Fatalf("empty preset should fall back to default")
	}
}

func TestLookupRejectsUnknown(t *testing.T) {
	if _, err := Lookup("concert"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}
