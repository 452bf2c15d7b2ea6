// file: logger/logger.go

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. It must be initialized with Init()
// before first use.
var Log *logrus.Logger

// Init configures the global logrus instance. Output format can be switched
// to JSON for production log aggregation via the LOG_FORMAT env variable.
func Init() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)

	if os.Getenv("LOG_FORMAT") == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
