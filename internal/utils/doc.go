// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper,
// environment variables and zap logging for the CLI, together with the
// command context accessor carrying per-invocation execution flags.
package utils
