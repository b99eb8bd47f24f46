package log

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// InfoLog, WarningLog and ErrorLog are the application's three severity
// loggers. They write to {config_dir}/league.log; Initialize must run
// before any other package logs. Until Initialize runs they discard output
// so that package-level init() ordering never panics on a nil logger.
var (
	InfoLog    = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime)
	WarningLog = log.New(io.Discard, "WARN: ", log.Ldate|log.Ltime)
	ErrorLog   = log.New(io.Discard, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	logFile *os.File
)

const logFileName = "league.log"

// Initialize opens the shared log file and points the three severity
// loggers at it. daemon selects a distinct prefix so interleaved log lines
// from the UI process and the daemon process are distinguishable when both
// happen to share a log file (e.g. during `league daemon` debugging).
func Initialize(daemon bool) {
	dir, err := defaultLogDir()
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	logFile = f

	prefix := ""
	if daemon {
		prefix = "[daemon] "
	}

	InfoLog = log.New(f, prefix+"INFO: ", log.Ldate|log.Ltime)
	WarningLog = log.New(f, prefix+"WARN: ", log.Ldate|log.Ltime)
	ErrorLog = log.New(f, prefix+"ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	InitDebug()
}

// Close flushes and closes the log file. Safe to call even if Initialize
// was never called or failed to open a file.
func Close() {
	CloseDebug()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// defaultLogDir avoids importing the config package (which itself logs)
// to sidestep an import cycle; it derives the same directory independently.
func defaultLogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".league"), nil
}
