package source

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/temirov/pageaudit/internal/rules"
	pathutils "github.com/temirov/pageaudit/internal/utils/path"
)

const (
	sourcePathMissingTemplateConstant = "%w: source path must be provided"
	sourceReadTemplateConstant        = "%w: %s: %v"
	sourceDirectoryTemplateConstant   = "%w: %s is a directory"
	sourceEncodingTemplateConstant    = "%w: %s is not valid UTF-8 text"
)

// FileReader abstracts file access for testing.
type FileReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFileReader implements FileReader with operating system primitives.
type OSFileReader struct{}

// Stat retrieves file metadata.
func (OSFileReader) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads file contents.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FileProvider reads page source text, expanding a leading tilde to the home directory.
type FileProvider struct {
	reader       FileReader
	homeExpander *pathutils.HomeExpander
}

// NewFileProvider constructs a FileProvider backed by the operating system.
func NewFileProvider() *FileProvider {
	return NewFileProviderWithReader(OSFileReader{}, pathutils.NewHomeExpander())
}

// NewFileProviderWithReader constructs a FileProvider with custom collaborators.
func NewFileProviderWithReader(reader FileReader, homeExpander *pathutils.HomeExpander) *FileProvider {
	if reader == nil {
		reader = OSFileReader{}
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &FileProvider{reader: reader, homeExpander: homeExpander}
}

// ReadSource returns the page text. Every failure wraps rules.ErrSourceUnreadable.
func (provider *FileProvider) ReadSource(path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return "", fmt.Errorf(sourcePathMissingTemplateConstant, rules.ErrSourceUnreadable)
	}
	resolvedPath := provider.homeExpander.Expand(trimmedPath)

	fileInfo, statError := provider.reader.Stat(resolvedPath)
	if statError != nil {
		return "", fmt.Errorf(sourceReadTemplateConstant, rules.ErrSourceUnreadable, resolvedPath, statError)
	}
	if fileInfo.IsDir() {
		return "", fmt.Errorf(sourceDirectoryTemplateConstant, rules.ErrSourceUnreadable, resolvedPath)
	}

	contentBytes, readError := provider.reader.ReadFile(resolvedPath)
	if readError != nil {
		return "", fmt.Errorf(sourceReadTemplateConstant, rules.ErrSourceUnreadable, resolvedPath, readError)
	}
	if !utf8.Valid(contentBytes) {
		return "", fmt.Errorf(sourceEncodingTemplateConstant, rules.ErrSourceUnreadable, resolvedPath)
	}

	return string(contentBytes), nil
}
