// Package rules defines audit definitions, the built-in rule catalog, and the
// loader that reads page definitions and design-token registries from YAML.
//
// Loader resolves a route to an immutable AuditDefinition whose Rules method
// derives the ordered rule list consumed by the scanner.
package rules
