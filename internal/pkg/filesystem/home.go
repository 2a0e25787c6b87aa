// Package filesystem holds small path helpers shared by the config loader
// and the feature extractor.
package filesystem

import "os"

// UserHomeDir resolves the home directory used to anchor ~ expansion and
// the default ~/.cmdgate location. When the environment carries no home it
// falls back to ".".
func UserHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
