package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	dotenvLoadErrorTemplateConstant                 = "failed to load environment file %s: %w"
)

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
// Precedence from lowest to highest: defaults, embedded configuration, configuration file,
// environment. Dotenv files only populate variables missing from the process environment.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	dotenvFiles               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed    string
	DotenvFilesLoaded []string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            append([]string(nil), searchPaths...),
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
	loader.embeddedConfiguration = nil
	if len(configurationData) > 0 {
		loader.embeddedConfiguration = append([]byte(nil), configurationData...)
	}
}

// SetDotenvFiles registers dotenv files loaded into the process environment before variables are read.
// Missing files are skipped; variables already present in the environment are never replaced.
func (loader *ConfigurationLoader) SetDotenvFiles(dotenvFiles []string) {
	if loader == nil {
		return
	}
	loader.dotenvFiles = append([]string(nil), dotenvFiles...)
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	loadedDotenvFiles, dotenvError := loader.loadDotenvFiles()
	if dotenvError != nil {
		return LoadedConfiguration{}, dotenvError
	}

	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		if len(loader.embeddedConfigurationType) > 0 {
			viperInstance.SetConfigType(loader.embeddedConfigurationType)
		}
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{
		ConfigFileUsed:    viperInstance.ConfigFileUsed(),
		DotenvFilesLoaded: loadedDotenvFiles,
	}, nil
}

func (loader *ConfigurationLoader) loadDotenvFiles() ([]string, error) {
	var loaded []string
	for _, dotenvFile := range loader.dotenvFiles {
		trimmedPath := strings.TrimSpace(dotenvFile)
		if len(trimmedPath) == 0 {
			continue
		}
		if _, statError := os.Stat(trimmedPath); statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf(dotenvLoadErrorTemplateConstant, trimmedPath, statError)
		}
		if loadError := godotenv.Load(trimmedPath); loadError != nil {
			return nil, fmt.Errorf(dotenvLoadErrorTemplateConstant, trimmedPath, loadError)
		}
		loaded = append(loaded, trimmedPath)
	}
	return loaded, nil
}
