package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/pageaudit/internal/report"
	"github.com/temirov/pageaudit/internal/source"
	"github.com/temirov/pageaudit/internal/utils"
	"github.com/temirov/pageaudit/internal/utils/flags"
	pathutils "github.com/temirov/pageaudit/internal/utils/path"
)

const (
	commandNameConstant        = "audit"
	commandShortDescription    = "Audit page sources against declarative content, accessibility, and design rules"
	commandLongDescription     = "audit loads the definition of each route, scans the page source with presence, absence, and structural rules, and prints a pass/warn/fail report."
	flagRouteName              = "route"
	flagRouteDescription       = "Route identifier of the audited page"
	flagSourceName             = "source"
	flagSourceDescription      = "Path to the page source audited for --route"
	flagPageName               = "page"
	flagPageDescription        = "Additional route=path pair to audit (repeatable)"
	flagDefinitionsName        = "definitions"
	flagDefinitionsDescription = "Path to the audit definitions file"
	flagTokensName             = "tokens"
	flagTokensDescription      = "Path to the design token registry"
	flagFormatName             = "format"
	flagFormatDescription      = "Report format"
	flagParallelismName        = "parallelism"
	flagParallelismDescription = "Maximum number of pages audited concurrently"
	flagRevisionName           = "revision"
	flagRevisionDescription    = "Read page sources as committed at this git revision instead of the working tree"
	errorMissingPages          = "no pages provided; specify --route with --source or --page"
	errorSourceWithoutRoute    = "--source requires --route"
	errorRouteWithoutSource    = "--route requires --source"
	errorUnexpectedArguments   = "audit does not accept positional arguments"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	LoaderFactory         DefinitionLoaderFactory
	TokenLoader           TokenRegistryLoader
	SourceProvider        SourceProvider
	Scanner               PageScanner
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the cobra command for page audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRouteName, "", flagRouteDescription)
	command.Flags().String(flagSourceName, "", flagSourceDescription)
	command.Flags().StringArray(flagPageName, nil, flagPageDescription)
	command.Flags().String(flagDefinitionsName, defaults.Definitions, flagDefinitionsDescription)
	command.Flags().String(flagTokensName, defaults.Tokens, flagTokensDescription)
	command.Flags().String(flagFormatName, defaults.Format, flags.FormatChoiceUsage(defaults.Format, report.Formats(), flagFormatDescription))
	command.Flags().Int(flagParallelismName, defaults.Parallelism, flagParallelismDescription)
	command.Flags().String(flagRevisionName, "", flagRevisionDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(errorUnexpectedArguments)
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	service := NewService(
		builder.resolveLogger(),
		builder.LoaderFactory,
		builder.TokenLoader,
		builder.resolveSourceProvider(command.Context(), options.Revision),
		builder.Scanner,
		utils.NewFlushingWriter(command.OutOrStdout()),
	)

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (CommandOptions, error) {
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	configuration := builder.resolveConfiguration().sanitize(configurationFilePath)

	routeValue, _ := command.Flags().GetString(flagRouteName)
	sourceValue, _ := command.Flags().GetString(flagSourceName)
	pageValues, _ := command.Flags().GetStringArray(flagPageName)

	if command.Flags().Changed(flagDefinitionsName) {
		configuration.Definitions, _ = command.Flags().GetString(flagDefinitionsName)
	}
	if command.Flags().Changed(flagTokensName) {
		configuration.Tokens, _ = command.Flags().GetString(flagTokensName)
	}
	if command.Flags().Changed(flagFormatName) {
		configuration.Format, _ = command.Flags().GetString(flagFormatName)
	}
	if command.Flags().Changed(flagParallelismName) {
		configuration.Parallelism, _ = command.Flags().GetInt(flagParallelismName)
	}

	routeValue = strings.TrimSpace(routeValue)
	sourceValue = strings.TrimSpace(sourceValue)

	var pages []PageTarget
	switch {
	case len(routeValue) > 0 && len(sourceValue) > 0:
		pages = append(pages, PageTarget{Route: routeValue, SourcePath: sourceValue})
	case len(routeValue) > 0:
		return CommandOptions{}, errors.New(errorRouteWithoutSource)
	case len(sourceValue) > 0:
		return CommandOptions{}, errors.New(errorSourceWithoutRoute)
	}

	for _, pageValue := range pageValues {
		target, targetError := ParsePageTarget(pageValue)
		if targetError != nil {
			return CommandOptions{}, targetError
		}
		pages = append(pages, target)
	}

	if len(pages) == 0 {
		if helpError := command.Help(); helpError != nil {
			return CommandOptions{}, helpError
		}
		return CommandOptions{}, errors.New(errorMissingPages)
	}

	formatChoice, formatError := flags.ParseChoice(configuration.Format, string(report.FormatText), report.Formats())
	if formatError != nil {
		return CommandOptions{}, formatError
	}

	revisionValue, _ := command.Flags().GetString(flagRevisionName)

	homeExpander := builder.resolveHomeExpander()
	return CommandOptions{
		Pages:           pages,
		DefinitionsPath: homeExpander.Expand(strings.TrimSpace(configuration.Definitions)),
		TokensPath:      homeExpander.Expand(strings.TrimSpace(configuration.Tokens)),
		Revision:        strings.TrimSpace(revisionValue),
		Format:          report.Format(formatChoice),
		Parallelism:     configuration.Parallelism,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveSourceProvider(executionContext context.Context, revision string) SourceProvider {
	if builder.SourceProvider != nil {
		return builder.SourceProvider
	}
	if len(revision) > 0 {
		return source.NewGitRevisionProvider(executionContext, source.NewOSCommandRunner(), builder.resolveLogger(), revision, "")
	}
	return source.NewFileProviderWithReader(source.OSFileReader{}, builder.resolveHomeExpander())
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}
