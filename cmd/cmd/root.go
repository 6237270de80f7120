package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/env"
	"github.com/okvist/exhume/internal/inspect"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - EWF image inspection and FAT listing tool",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("log-file", "", "write diagnostic logs to the specified file")
	rootCmd.PersistentFlags().Uint32("sector-size", 0, "override the disk sector size (0 = autodetect)")

	rootCmd.AddCommand(DefineInfoCommand())
	rootCmd.AddCommand(DefinePartitionsCommand())
	rootCmd.AddCommand(DefineLsCommand())
	rootCmd.AddCommand(DefineExtractCommand())
	rootCmd.AddCommand(DefineMountCommand())

	return rootCmd.Execute()
}

func parseOptions(cmd *cobra.Command) inspect.Options {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	sectorSize, _ := cmd.Flags().GetUint32("sector-size")

	return inspect.Options{
		SectorSize: sectorSize,
		LogLevel:   parseLogLevel(logLevel),
		LogFile:    logFile,
		DisableLog: logFile == "",
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
