package deps

// Binaries names the external commands a transcription run shells out to.
type Binaries struct {
	FFmpeg  string
	FFprobe string
	UVX     string
}

// Requirements builds the dependency list for the configured binaries.
// Everything here is required: extraction and probing need ffmpeg and
// ffprobe, recognition resolves its CLI through uvx.
func Requirements(bins Binaries) []Requirement {
	if bins.FFmpeg == "" {
		bins.FFmpeg = "ffmpeg"
	}
	if bins.FFprobe == "" {
		bins.FFprobe = "ffprobe"
	}
	if bins.UVX == "" {
		bins.UVX = "uvx"
	}
	return []Requirement{
		{Name: "FFmpeg", Command: bins.FFmpeg, Purpose: "Extracts per-chunk audio artifacts"},
		{Name: "FFprobe", Command: bins.FFprobe, Purpose: "Probes source duration and audio streams"},
		{Name: "uvx", Command: bins.UVX, Purpose: "Runs the recognition and diarization CLIs"},
	}
}
