package merge

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/services"
)

// Output format names accepted by Write.
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatSRT  = "srt"
	FormatVTT  = "vtt"
)

// Formats returns the supported output format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatSRT, FormatVTT}
}

// Render serializes the transcript in the named format.
func Render(t *Transcript, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText:
		return []byte(RenderText(t)), nil
	case FormatJSON:
		return RenderJSON(t)
	case FormatSRT:
		return []byte(RenderSRT(t)), nil
	case FormatVTT:
		return []byte(RenderVTT(t)), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "merge", "render",
			fmt.Sprintf("unknown output format %q (expected one of %s)", format, strings.Join(Formats(), ", ")), nil)
	}
}

// Write serializes the transcript into dir once per requested format,
// named <stem>.<format>, and returns the written paths.
func Write(t *Transcript, dir, stem string, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatText}
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, err := Render(t, format)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, stem+"."+strings.ToLower(strings.TrimSpace(format)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, services.Wrap(services.ErrConfiguration, "merge", "write transcript", "", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RenderText emits one line per segment, prefixed with the speaker label
// when attribution ran.
func RenderText(t *Transcript) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			b.WriteString(seg.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderJSON emits the complete transcript document, statistics and
// per-chunk detail included.
func RenderJSON(t *Transcript) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "merge", "encode transcript", "", err)
	}
	return append(data, '\n'), nil
}

// RenderSRT emits SubRip captions with comma-millisecond timestamps.
func RenderSRT(t *Transcript) string {
	var b strings.Builder
	index := 0
	for _, seg := range t.Segments {
		text := captionText(seg.Speaker, seg.Text)
		if text == "" {
			continue
		}
		index++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			index, formatTimestamp(seg.Start, ','), formatTimestamp(seg.End, ','), text)
	}
	return b.String()
}

// RenderVTT emits WebVTT captions with dot-millisecond timestamps.
func RenderVTT(t *Transcript) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range t.Segments {
		text := captionText(seg.Speaker, seg.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			formatTimestamp(seg.Start, '.'), formatTimestamp(seg.End, '.'), text)
	}
	return b.String()
}

func captionText(speaker, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if speaker != "" {
		return speaker + ": " + text
	}
	return text
}

func formatTimestamp(seconds float64, millisSep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds * 1000))
	millis := total % 1000
	total /= 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", total/3600, total/60%60, total%60, millisSep, millis)
}
