package audit

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/utils"
	pathutils "github.com/temirov/pageaudit/internal/utils/path"
)

const (
	rulesCommandNameConstant        = "rules"
	rulesCommandShortDescription    = "List built-in audit rules and configured routes"
	rulesCommandLongDescription     = "rules prints the built-in rule catalog. With --routes it lists the routes defined in the audit definitions file instead."
	flagRoutesName                  = "routes"
	flagRoutesDescription           = "List configured routes instead of built-in rules"
	catalogHeaderConstant           = "NAME\tKIND\tSEVERITY\tCATEGORY\tDESCRIPTION\n"
	catalogRowTemplateConstant      = "%s\t%s\t%s\t%s\t%s\n"
	routeRowTemplateConstant        = "%s\n"
	rulesUnexpectedArgumentsMessage = "rules does not accept positional arguments"
	tabwriterMinimumWidthConstant   = 0
	tabwriterTabWidthConstant       = 4
	tabwriterPaddingConstant        = 2
	tabwriterPaddingCharacter       = ' '
)

// CatalogCommandBuilder assembles the rules cobra command.
type CatalogCommandBuilder struct {
	ConfigurationProvider ConfigurationProvider
	LoaderFactory         func(definitionsPath string) RouteLister
}

// RouteLister lists the routes present in a configuration store.
type RouteLister interface {
	Routes() ([]string, error)
}

// Build constructs the rules command.
func (builder *CatalogCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   rulesCommandNameConstant,
		Short: rulesCommandShortDescription,
		Long:  rulesCommandLongDescription,
		RunE:  builder.run,
	}
	command.Flags().Bool(flagRoutesName, false, flagRoutesDescription)
	command.Flags().String(flagDefinitionsName, DefaultCommandConfiguration().Definitions, flagDefinitionsDescription)
	return command, nil
}

func (builder *CatalogCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(rulesUnexpectedArgumentsMessage)
	}

	listRoutes, _ := command.Flags().GetBool(flagRoutesName)
	if !listRoutes {
		return writeCatalog(command, rules.BuiltinRules())
	}

	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	configuration = configuration.sanitize(configurationFilePath)
	if command.Flags().Changed(flagDefinitionsName) {
		configuration.Definitions, _ = command.Flags().GetString(flagDefinitionsName)
	}

	configuration.Definitions = pathutils.NewHomeExpander().Expand(strings.TrimSpace(configuration.Definitions))

	var lister RouteLister
	if builder.LoaderFactory != nil {
		lister = builder.LoaderFactory(configuration.Definitions)
	} else {
		lister = rules.NewLoader(configuration.Definitions, rules.NewTokenRegistry(nil))
	}

	routes, routesError := lister.Routes()
	if routesError != nil {
		return routesError
	}
	for _, route := range routes {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), routeRowTemplateConstant, route); writeError != nil {
			return writeError
		}
	}
	return nil
}

func writeCatalog(command *cobra.Command, catalog []rules.Rule) error {
	tableWriter := tabwriter.NewWriter(command.OutOrStdout(), tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingCharacter, 0)
	if _, writeError := fmt.Fprint(tableWriter, catalogHeaderConstant); writeError != nil {
		return writeError
	}
	for _, rule := range catalog {
		if _, writeError := fmt.Fprintf(tableWriter, catalogRowTemplateConstant, rule.Name, rule.Kind, rule.Severity, rule.Category, strings.TrimSpace(rule.Description)); writeError != nil {
			return writeError
		}
	}
	return tableWriter.Flush()
}
