package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger = zap.NewNop()

func Init(debug bool) {
	var err error
	if debug {
		Log, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		Log, err = cfg.Build()
	}

	if err != nil {
		Log = zap.NewNop()
	}
}

func Sync() {
	_ = Log.Sync()
}
