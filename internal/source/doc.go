// Package source reads page implementations from the working tree or, through
// git, as committed at a revision.
package source
