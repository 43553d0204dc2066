package logconfig

import (
	"os"

	myLogger "github.com/sirupsen/logrus"
)

// This output format is used in tests and interactive sessions (has terminal).
func ConfigDebugLogger() {
	myLogger.SetReportCaller(true)
	myLogger.SetLevel(myLogger.DebugLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

func ConfigInfoLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// This output format is used when the tool runs unattended (CI, scripts).
func ConfigProductionLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.JSONFormatter{})
}

// ConfigLogger picks the output format for a level name such as "debug",
// "info" or "warn". Logs go to stderr so command output stays parsable.
func ConfigLogger(level string, json bool) error {
	lvl, err := myLogger.ParseLevel(level)
	if err != nil {
		return err
	}

	switch {
	case json:
		ConfigProductionLogger()
	case lvl >= myLogger.DebugLevel:
		ConfigDebugLogger()
	default:
		ConfigInfoLogger()
	}
	myLogger.SetLevel(lvl)
	myLogger.SetOutput(os.Stderr)

	return nil
}
