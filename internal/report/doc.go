// Package report aggregates scan results into audit reports and writes them
// in text, JSON, or CSV form. It performs no rule evaluation.
package report
