package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before InitLogger runs so packages can log during
// early startup and in tests.
var Log = logrus.New()

// InitLogger configures the shared logrus instance. JSON output keeps
// the logs machine-parseable in production; debug level is enabled
// outside production so request flow is visible during development.
func InitLogger(env string) {
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})

	if env == "production" {
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(logrus.DebugLevel)
	}
}
