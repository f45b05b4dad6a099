package audit

import (
	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/scanner"
)

// DefinitionLoader resolves a route to its audit definition.
type DefinitionLoader interface {
	Load(route string) (rules.AuditDefinition, error)
}

// DefinitionLoaderFactory builds a loader for a configuration store and token registry.
type DefinitionLoaderFactory func(definitionsPath string, tokens rules.TokenRegistry) DefinitionLoader

// TokenRegistryLoader reads the design-token registry.
type TokenRegistryLoader func(path string) (rules.TokenRegistry, error)

// SourceProvider supplies the raw text of a page implementation.
type SourceProvider interface {
	ReadSource(path string) (string, error)
}

// PageScanner evaluates a definition against page text.
type PageScanner interface {
	Scan(sourceText string, definition rules.AuditDefinition) []scanner.ScanResult
}

func defaultDefinitionLoaderFactory(definitionsPath string, tokens rules.TokenRegistry) DefinitionLoader {
	return rules.NewLoader(definitionsPath, tokens)
}
