package assets

import (
	"embed"
	"io/fs"
)

//go:embed game.yaml index.html
var FS embed.FS

// DefaultConfig returns the embedded game settings YAML.
func DefaultConfig() ([]byte, error) {
	return fs.ReadFile(FS, "game.yaml")
}

// IndexHTML returns the single-page front end.
func IndexHTML() ([]byte, error) {
	return fs.ReadFile(FS, "index.html")
}
