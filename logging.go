package ocragent

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging routes the global logger to stdout plus a per-day log file
// under logDir. Returns the path of the active log file.
func SetupLogging(logDir string, debug bool) (string, error) {

	zerolog.TimeFieldFormat = time.StampMilli
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", err
	}

	logFileName := filepath.Join(logDir, fmt.Sprintf("ocr_agent_%s.log", time.Now().Format("20060102")))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", err
	}

	multi := zerolog.MultiLevelWriter(os.Stdout, logFile)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()

	return logFileName, nil
}
