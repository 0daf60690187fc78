// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Writes to stdout when dir is empty.
// - Otherwise ensures dir exists and creates a timestamped log file in it.
// - Writes logs to both the file and stdout in that case.
// - Configures separate loggers (Info, Warn, Error, Debug) with consistent prefixes & flags.
func InitLogger(dir string) error {
	var out io.Writer = os.Stdout

	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}

		logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	setOutput(out)
	return nil
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// Production discards debug output; every other environment keeps it.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// Silence routes every logger to io.Discard. Tests use it to keep output readable.
func Silence() {
	setOutput(io.Discard)
}

func setOutput(w io.Writer) {
	Info = log.New(w, "INFO: ", flags)
	Warn = log.New(w, "WARN: ", flags)
	Error = log.New(w, "ERROR: ", flags)
	Debug = log.New(w, "DEBUG: ", flags)
}

// init makes the loggers usable before main configures them (stdout only).
func init() {
	setOutput(os.Stdout)
}
