package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tildeSymbolConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts "~" and "~/..." paths to absolute paths. "~user" forms are left untouched.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	resolveOnce           sync.Once
	homeDirectory         string
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading tilde to the user's home directory. Paths are
// returned unchanged when the home directory cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	expander.resolveOnce.Do(func() {
		if homeDirectory, lookupError := expander.homeDirectoryProvider(); lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	return filepath.Join(expander.homeDirectory, remainder)
}
