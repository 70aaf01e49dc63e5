package whisper

// Config captures runtime settings for the recognition CLI.
type Config struct {
	// Model is the model size or profile (e.g. "medium", "large-v3").
	Model string
	// Device selects the inference device ("cpu" or "cuda").
	Device string
	// ComputeType is the inference precision ("int8", "float16", "float32").
	ComputeType string
	// CacheDir is where the runtime stores downloaded models.
	CacheDir string
	// UVX is the uv tool-runner binary resolving the CLI. Empty uses
	// uvx from PATH.
	UVX string
}

// Recognition CLI constants.
const (
	DefaultModel       = "medium"
	DefaultDevice      = "cpu"
	DefaultComputeType = "int8"
	DefaultBeamSize    = 5

	// UVXCommand resolves the CLI through uv's tool runner.
	UVXCommand = "uvx"
	// CLIName is the faster-whisper command line frontend.
	CLIName = "whisper-ctranslate2"
)
