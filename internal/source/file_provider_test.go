package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/source"
	pathutils "github.com/temirov/pageaudit/internal/utils/path"
)

const (
	pageFileNameConstant    = "page.tsx"
	pageContentConstant     = "export const metadata = { title: \"Terms\" };\n<h1>Terms</h1>\n"
	invalidUTF8FileConstant = "binary.bin"
)

func TestFileProviderReadSource(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	pagePath := filepath.Join(homeDirectory, pageFileNameConstant)
	require.NoError(testInstance, os.WriteFile(pagePath, []byte(pageContentConstant), 0o600))
	require.NoError(testInstance, os.WriteFile(filepath.Join(homeDirectory, invalidUTF8FileConstant), []byte{0xff, 0xfe, 0xfd}, 0o600))

	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil })
	provider := source.NewFileProviderWithReader(source.OSFileReader{}, homeExpander)

	testCases := []struct {
		name            string
		path            string
		expectedContent string
		expectError     bool
	}{
		{name: "absolute_path", path: pagePath, expectedContent: pageContentConstant},
		{name: "home_relative_path", path: "~/" + pageFileNameConstant, expectedContent: pageContentConstant},
		{name: "empty_path", path: "  ", expectError: true},
		{name: "missing_file", path: filepath.Join(homeDirectory, "absent.tsx"), expectError: true},
		{name: "directory", path: homeDirectory, expectError: true},
		{name: "invalid_utf8", path: filepath.Join(homeDirectory, invalidUTF8FileConstant), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			content, readError := provider.ReadSource(testCase.path)
			if testCase.expectError {
				require.ErrorIs(testInstance, readError, rules.ErrSourceUnreadable)
				return
			}
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedContent, content)
		})
	}
}

type failingFileReader struct {
	source.OSFileReader
}

func (failingFileReader) ReadFile(string) ([]byte, error) {
	return nil, errors.New("device not ready")
}

func TestFileProviderWrapsReadFailures(testInstance *testing.T) {
	pagePath := filepath.Join(testInstance.TempDir(), pageFileNameConstant)
	require.NoError(testInstance, os.WriteFile(pagePath, []byte(pageContentConstant), 0o600))

	provider := source.NewFileProviderWithReader(failingFileReader{}, nil)
	_, readError := provider.ReadSource(pagePath)
	require.ErrorIs(testInstance, readError, rules.ErrSourceUnreadable)
	require.ErrorContains(testInstance, readError, "device not ready")
}
