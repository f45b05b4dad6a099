// Package audit implements the page audit workflow used by the pageaudit CLI.
//
// It exposes CommandBuilder for wiring the audit Cobra command, Service for
// driving load, scan, and report steps programmatically, and the collaborator
// interfaces for definition loading, page source reading, and report output.
package audit
