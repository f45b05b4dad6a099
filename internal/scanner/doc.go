// Package scanner evaluates presence, absence, and structural rules against page source text.
package scanner
