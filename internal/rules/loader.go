package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	pagesDocumentKeyConstant             = "pages"
	routeDocumentKeyConstant             = "route"
	definitionStoreRequiredMessage       = "definitions path must be provided"
	definitionStoreReadTemplateConstant  = "definitions %s: %w"
	definitionStoreParseTemplateConstant = "definitions %s: %w: %v"
	definitionStoreShapeTemplateConstant = "definitions %s: %w: pages must be a list of mappings"
	definitionRouteNotFoundTemplate      = "%w: route %q"
	definitionDuplicateRouteTemplate     = "route defined more than once"
	definitionDecodeTemplateConstant     = "%w: route %q: %v"
	definitionDecoderCreateTemplate      = "unable to create definition decoder: %w"
)

// FileReader reads the configuration store.
type FileReader func(path string) ([]byte, error)

// Loader resolves routes to audit definitions stored in a YAML or JSON document.
type Loader struct {
	storePath string
	tokens    TokenRegistry
	readFile  FileReader
}

// NewLoader constructs a Loader reading from storePath and validating tokens against the registry.
func NewLoader(storePath string, tokens TokenRegistry) *Loader {
	return NewLoaderWithReader(storePath, tokens, os.ReadFile)
}

// NewLoaderWithReader constructs a Loader with a custom reader.
func NewLoaderWithReader(storePath string, tokens TokenRegistry, reader FileReader) *Loader {
	if reader == nil {
		reader = os.ReadFile
	}
	return &Loader{
		storePath: strings.TrimSpace(storePath),
		tokens:    tokens,
		readFile:  reader,
	}
}

// Load returns the audit definition for the route.
func (loader *Loader) Load(route string) (AuditDefinition, error) {
	pages, pagesError := loader.readPages()
	if pagesError != nil {
		return AuditDefinition{}, pagesError
	}

	requestedRoute := strings.TrimSpace(route)
	var matchingPages []map[string]any
	for _, page := range pages {
		if pageRoute(page) == requestedRoute && len(requestedRoute) > 0 {
			matchingPages = append(matchingPages, page)
		}
	}

	switch len(matchingPages) {
	case 0:
		return AuditDefinition{}, fmt.Errorf(definitionRouteNotFoundTemplate, ErrConfigNotFound, requestedRoute)
	case 1:
	default:
		return AuditDefinition{}, malformed(requestedRoute, definitionDuplicateRouteTemplate)
	}

	document, decodeError := decodePage(matchingPages[0])
	if decodeError != nil {
		return AuditDefinition{}, fmt.Errorf(definitionDecodeTemplateConstant, ErrConfigMalformed, requestedRoute, decodeError)
	}

	return NewAuditDefinition(document, loader.tokens)
}

// Routes lists the routes present in the configuration store, sorted.
func (loader *Loader) Routes() ([]string, error) {
	pages, pagesError := loader.readPages()
	if pagesError != nil {
		return nil, pagesError
	}
	routes := make([]string, 0, len(pages))
	for _, page := range pages {
		if route := pageRoute(page); len(route) > 0 {
			routes = append(routes, route)
		}
	}
	sort.Strings(routes)
	return routes, nil
}

func (loader *Loader) readPages() ([]map[string]any, error) {
	if len(loader.storePath) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, definitionStoreRequiredMessage)
	}

	contentBytes, readError := loader.readFile(loader.storePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, fmt.Errorf(definitionStoreReadTemplateConstant, loader.storePath, ErrConfigNotFound)
		}
		return nil, fmt.Errorf(definitionStoreReadTemplateConstant, loader.storePath, readError)
	}

	var document map[string]any
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(definitionStoreParseTemplateConstant, loader.storePath, ErrConfigMalformed, unmarshalError)
	}

	rawPages, isList := document[pagesDocumentKeyConstant].([]any)
	if document[pagesDocumentKeyConstant] != nil && !isList {
		return nil, fmt.Errorf(definitionStoreShapeTemplateConstant, loader.storePath, ErrConfigMalformed)
	}

	pages := make([]map[string]any, 0, len(rawPages))
	for _, rawPage := range rawPages {
		page, isMapping := rawPage.(map[string]any)
		if !isMapping {
			return nil, fmt.Errorf(definitionStoreShapeTemplateConstant, loader.storePath, ErrConfigMalformed)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func pageRoute(page map[string]any) string {
	route, isString := page[routeDocumentKeyConstant].(string)
	if !isString {
		return ""
	}
	return strings.TrimSpace(route)
}

func decodePage(page map[string]any) (PageDocument, error) {
	var document PageDocument
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &document,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if decoderError != nil {
		return PageDocument{}, fmt.Errorf(definitionDecoderCreateTemplate, decoderError)
	}
	if decodeError := decoder.Decode(page); decodeError != nil {
		return PageDocument{}, decodeError
	}
	return document, nil
}
