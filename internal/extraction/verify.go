package extraction

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Expected artifact properties for the recognition engine.
const (
	ArtifactSampleRate = 16000
	ArtifactChannels   = 1
	ArtifactBitDepth   = 16
)

// VerifyArtifact decodes the WAV header and confirms the artifact matches
// the mono/16kHz/16-bit contract. Catching a malformed extraction here is
// cheaper than a confusing recognition failure later.
func VerifyArtifact(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("verify artifact: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return fmt.Errorf("verify artifact: %s is not a valid wav file", path)
	}
	if got := int(decoder.SampleRate); got != ArtifactSampleRate {
		return fmt.Errorf("verify artifact: sample rate %d, want %d", got, ArtifactSampleRate)
	}
	if got := int(decoder.NumChans); got != ArtifactChannels {
		return fmt.Errorf("verify artifact: %d channels, want %d", got, ArtifactChannels)
	}
	if got := int(decoder.BitDepth); got != ArtifactBitDepth {
		return fmt.Errorf("verify artifact: bit depth %d, want %d", got, ArtifactBitDepth)
	}
	return nil
}
