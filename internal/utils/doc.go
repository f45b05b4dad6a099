// Package utils exposes reusable helpers consumed by the pageaudit commands.
//
// ConfigurationLoader merges embedded defaults, configuration files, dotenv
// files, and environment variables through Viper. LoggerFactory builds zap
// loggers in structured or console form.
package utils
