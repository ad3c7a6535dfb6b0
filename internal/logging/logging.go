package logging

import "go.uber.org/zap"

// New returns a console logger at debug level for development and a JSON
// production logger otherwise.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
