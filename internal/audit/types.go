package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/pageaudit/internal/report"
)

const (
	pageSeparatorConstant             = "="
	pageTargetInvalidTemplateConstant = "invalid page %q; expected route=path"
	auditFailedMessageConstant        = "audit failed"
)

// ErrAuditFailed signals that at least one audited page finished with a failing status.
var ErrAuditFailed = errors.New(auditFailedMessageConstant)

// PageTarget pairs an audited route with the path to its source.
type PageTarget struct {
	Route      string
	SourcePath string
}

// ParsePageTarget parses a route=path pair.
func ParsePageTarget(rawValue string) (PageTarget, error) {
	route, sourcePath, found := strings.Cut(rawValue, pageSeparatorConstant)
	route = strings.TrimSpace(route)
	sourcePath = strings.TrimSpace(sourcePath)
	if !found || len(route) == 0 || len(sourcePath) == 0 {
		return PageTarget{}, fmt.Errorf(pageTargetInvalidTemplateConstant, rawValue)
	}
	return PageTarget{Route: route, SourcePath: sourcePath}, nil
}

// CommandOptions captures the parameters of one audit invocation.
type CommandOptions struct {
	Pages           []PageTarget
	DefinitionsPath string
	TokensPath      string
	Revision        string
	Format          report.Format
	Parallelism     int
}

// PageOutcome records the result of one page run.
type PageOutcome struct {
	Target PageTarget
	Report report.AuditReport
	Error  error
}
