package common

import (
	"os"
	"path/filepath"
)

// AppDir returns the noteblock directory (~/.noteblock), or
// $NOTEBLOCK_HOME when set.
func AppDir() string {
	if dir := os.Getenv("NOTEBLOCK_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".noteblock")
}
