package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/pageaudit/internal/report"
	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/scanner"
	"github.com/temirov/pageaudit/internal/source"
)

const (
	noPagesMessageConstant             = "no pages to audit"
	pageErrorTemplateConstant          = "route %s: %w"
	auditFailedTemplateConstant        = "%w: route %s"
	auditStartedMessageConstant        = "page audit started"
	auditCompletedMessageConstant      = "page audit completed"
	auditAbortedMessageConstant        = "page audit aborted"
	tokenRegistryLoadedMessageConstant = "design token registry loaded"
	logFieldRouteConstant              = "route"
	logFieldSourceConstant             = "source"
	logFieldStatusConstant             = "status"
	logFieldIssueCountConstant         = "issue_count"
	logFieldRuleCountConstant          = "rule_count"
	logFieldReportIdentifierConstant   = "report_id"
	logFieldTokenCountConstant         = "token_count"
	logFieldTokensPathConstant         = "tokens_path"
	defaultParallelismConstant         = 4
)

// Service coordinates definition loading, scanning, and report emission.
type Service struct {
	logger         *zap.Logger
	loaderFactory  DefinitionLoaderFactory
	tokenLoader    TokenRegistryLoader
	sourceProvider SourceProvider
	scanner        PageScanner
	outputWriter   io.Writer
}

// NewService constructs a Service using the provided dependencies. Nil
// collaborators fall back to the file-backed defaults.
func NewService(logger *zap.Logger, loaderFactory DefinitionLoaderFactory, tokenLoader TokenRegistryLoader, sourceProvider SourceProvider, pageScanner PageScanner, outputWriter io.Writer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loaderFactory == nil {
		loaderFactory = defaultDefinitionLoaderFactory
	}
	if tokenLoader == nil {
		tokenLoader = rules.LoadTokenRegistry
	}
	if sourceProvider == nil {
		sourceProvider = source.NewFileProvider()
	}
	if pageScanner == nil {
		pageScanner = scanner.NewScanner()
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	return &Service{
		logger:         logger,
		loaderFactory:  loaderFactory,
		tokenLoader:    tokenLoader,
		sourceProvider: sourceProvider,
		scanner:        pageScanner,
		outputWriter:   outputWriter,
	}
}

// Run audits every page and writes the reports in page order as one document. Infrastructure
// errors of individual pages are combined; ErrAuditFailed is returned when a
// page report fails and no infrastructure error occurred.
func (service *Service) Run(executionContext context.Context, options CommandOptions) ([]PageOutcome, error) {
	if len(options.Pages) == 0 {
		return nil, errors.New(noPagesMessageConstant)
	}

	emitter, emitterError := report.NewEmitter(service.outputWriter, options.Format)
	if emitterError != nil {
		return nil, emitterError
	}

	tokens, tokensError := service.tokenLoader(options.TokensPath)
	if tokensError != nil {
		return nil, tokensError
	}
	service.logger.Debug(
		tokenRegistryLoadedMessageConstant,
		zap.String(logFieldTokensPathConstant, options.TokensPath),
		zap.Int(logFieldTokenCountConstant, tokens.Len()),
	)

	outcomes := make([]PageOutcome, len(options.Pages))
	parallelism := options.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelismConstant
	}

	var group errgroup.Group
	group.SetLimit(parallelism)
	for pageIndex, target := range options.Pages {
		pageIndex, target := pageIndex, target
		group.Go(func() error {
			outcomes[pageIndex] = service.auditPage(executionContext, options.DefinitionsPath, tokens, target)
			return nil
		})
	}
	_ = group.Wait()

	var infrastructureErrors error
	var failedRoutes error
	auditReports := make([]report.AuditReport, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Error != nil {
			infrastructureErrors = multierr.Append(infrastructureErrors, outcome.Error)
			continue
		}
		auditReports = append(auditReports, outcome.Report)
		if outcome.Report.Status == report.StatusFail {
			failedRoutes = multierr.Append(failedRoutes, fmt.Errorf(auditFailedTemplateConstant, ErrAuditFailed, outcome.Target.Route))
		}
	}
	if emitError := emitter.EmitAll(auditReports); emitError != nil {
		return outcomes, emitError
	}

	if infrastructureErrors != nil {
		return outcomes, infrastructureErrors
	}
	return outcomes, failedRoutes
}

// auditPage runs load, read, scan, and aggregate for one page. It shares no mutable state with other pages.
func (service *Service) auditPage(executionContext context.Context, definitionsPath string, tokens rules.TokenRegistry, target PageTarget) PageOutcome {
	outcome := PageOutcome{Target: target}
	pageLogger := service.logger.With(
		zap.String(logFieldRouteConstant, target.Route),
		zap.String(logFieldSourceConstant, target.SourcePath),
	)

	if contextError := executionContext.Err(); contextError != nil {
		outcome.Error = fmt.Errorf(pageErrorTemplateConstant, target.Route, contextError)
		return outcome
	}

	pageLogger.Debug(auditStartedMessageConstant)

	definition, loadError := service.loaderFactory(definitionsPath, tokens).Load(target.Route)
	if loadError != nil {
		outcome.Error = fmt.Errorf(pageErrorTemplateConstant, target.Route, loadError)
		pageLogger.Warn(auditAbortedMessageConstant, zap.Error(loadError))
		return outcome
	}

	sourceText, sourceError := service.sourceProvider.ReadSource(target.SourcePath)
	if sourceError != nil {
		if !errors.Is(sourceError, rules.ErrSourceUnreadable) {
			sourceError = fmt.Errorf("%w: %v", rules.ErrSourceUnreadable, sourceError)
		}
		outcome.Error = fmt.Errorf(pageErrorTemplateConstant, target.Route, sourceError)
		pageLogger.Warn(auditAbortedMessageConstant, zap.Error(sourceError))
		return outcome
	}

	results := service.scanner.Scan(sourceText, definition)
	outcome.Report = report.Build(definition.Route(), results)

	pageLogger.Info(
		auditCompletedMessageConstant,
		zap.String(logFieldReportIdentifierConstant, outcome.Report.ID),
		zap.String(logFieldStatusConstant, string(outcome.Report.Status)),
		zap.Int(logFieldRuleCountConstant, len(results)),
		zap.Int(logFieldIssueCountConstant, len(outcome.Report.Issues)),
	)

	return outcome
}
