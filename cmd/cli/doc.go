// Package cli constructs the pageaudit command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging.
package cli
