// Package xlog constructs the one process-wide *logrus.Logger every other
// package borrows an entry from, generalizing the teacher's inline
// logrus.New()+TextFormatter block (parser.go's
// NewTransactionParserFromTransaction) into a single shared constructor so
// components bind fields onto one logger instance instead of each building
// their own.
package xlog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

// Logger returns the shared *logrus.Logger, constructing it on first call
// with the teacher's exact formatter settings.
func Logger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	})
	return logger
}

// For returns a *logrus.Entry with component pre-bound, the pattern
// dexparser.Parser uses instead of calling Logger() directly.
func For(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}

// SetLevel adjusts the shared logger's verbosity; cmd/solparse wires this to
// a --verbose flag.
func SetLevel(level logrus.Level) {
	Logger().SetLevel(level)
}
