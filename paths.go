package wesscdrs

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Paths holds the resolved data and output roots for a pipeline run. The
// environment is read exactly once, here; downstream packages only ever see
// an explicit Paths value.
type Paths struct {
	Data string
	Out  string
}

// FindPaths resolves the data and output directories from WESSCDRS_DATA and
// WESSCDRS_OUT, optionally seeded from a .env file in the working directory
// if one exists. Unset variables fall back to ./data and ./output beneath
// baseDir.
func FindPaths(baseDir string) Paths {
	// Best-effort; a missing .env file is not an error.
	godotenv.Load()

	out := Paths{
		Data: os.Getenv("WESSCDRS_DATA"),
		Out:  os.Getenv("WESSCDRS_OUT"),
	}

	if out.Data == "" {
		out.Data = filepath.Join(baseDir, "data")
	}
	if out.Out == "" {
		out.Out = filepath.Join(baseDir, "output")
	}

	out.Data = ExpandHome(out.Data)
	out.Out = ExpandHome(out.Out)

	return out
}
