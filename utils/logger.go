package utils

import (
	"os"

	"go.uber.org/zap"
)

// Logger defaults to a nop so packages can log unconditionally even before
// startup wiring; InitLogger swaps in the real one.
var Logger = zap.NewNop()

func InitLogger() {
	// JSON logs on stdout for aggregation tools (ELK, Datadog)
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	if os.Getenv("LOG_LEVEL") == "debug" {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	Logger = logger
}
