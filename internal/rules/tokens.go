package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	tokensDocumentKeyConstant              = "tokens"
	tokenRegistryReadErrorTemplateConstant = "design token registry %s: %w"
	tokenRegistryParseTemplateConstant     = "design token registry %s: %w: %v"
	tokenRegistryShapeTemplateConstant     = "design token registry %s: %w: tokens must be a list or a mapping"
	tokenRegistryEntryTemplateConstant     = "design token registry %s: %w: token names must be non-empty strings"
)

// TokenRegistry is the set of canonical design token names.
type TokenRegistry struct {
	values map[string]string
}

// NewTokenRegistry builds a registry from token names mapped to their values.
func NewTokenRegistry(values map[string]string) TokenRegistry {
	registry := TokenRegistry{values: make(map[string]string, len(values))}
	for name, value := range values {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		registry.values[trimmedName] = value
	}
	return registry
}

// Len returns the number of registered tokens.
func (registry TokenRegistry) Len() int {
	return len(registry.values)
}

// Contains reports whether the token name is registered.
func (registry TokenRegistry) Contains(name string) bool {
	_, exists := registry.values[name]
	return exists
}

// Names returns the registered token names sorted alphabetically.
func (registry TokenRegistry) Names() []string {
	names := make([]string, 0, len(registry.values))
	for name := range registry.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReferencedIn reports whether the text mentions any registered token name.
func (registry TokenRegistry) ReferencedIn(text string) bool {
	for name := range registry.values {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}

// LoadTokenRegistry reads a YAML or JSON registry. An empty path yields an empty registry.
func LoadTokenRegistry(path string) (TokenRegistry, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return NewTokenRegistry(nil), nil
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return TokenRegistry{}, fmt.Errorf(tokenRegistryReadErrorTemplateConstant, trimmedPath, ErrConfigNotFound)
		}
		return TokenRegistry{}, fmt.Errorf(tokenRegistryReadErrorTemplateConstant, trimmedPath, readError)
	}

	return ParseTokenRegistry(trimmedPath, contentBytes)
}

// ParseTokenRegistry decodes registry content. The tokens key holds either a
// list of names or a mapping of names to values.
func ParseTokenRegistry(origin string, contentBytes []byte) (TokenRegistry, error) {
	var document map[string]any
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return TokenRegistry{}, fmt.Errorf(tokenRegistryParseTemplateConstant, origin, ErrConfigMalformed, unmarshalError)
	}

	values := map[string]string{}
	switch tokens := document[tokensDocumentKeyConstant].(type) {
	case nil:
	case []any:
		for _, entry := range tokens {
			name, isString := entry.(string)
			if !isString || len(strings.TrimSpace(name)) == 0 {
				return TokenRegistry{}, fmt.Errorf(tokenRegistryEntryTemplateConstant, origin, ErrConfigMalformed)
			}
			values[strings.TrimSpace(name)] = ""
		}
	case map[string]any:
		for name, value := range tokens {
			if len(strings.TrimSpace(name)) == 0 {
				return TokenRegistry{}, fmt.Errorf(tokenRegistryEntryTemplateConstant, origin, ErrConfigMalformed)
			}
			values[strings.TrimSpace(name)] = fmt.Sprint(value)
		}
	default:
		return TokenRegistry{}, fmt.Errorf(tokenRegistryShapeTemplateConstant, origin, ErrConfigMalformed)
	}

	return NewTokenRegistry(values), nil
}
