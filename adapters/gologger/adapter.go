package gologger

import (
	"github.com/goliatone/go-authprovider/core"
	glog "github.com/goliatone/go-logger/glog"
)

// DefaultName is the logger name the provider asks for.
const DefaultName = "authprovider"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ProviderOptions resolves once and hands the result to core.NewProvider, so
// the provider and its identity client log through the same logger.
func ProviderOptions(provider glog.LoggerProvider, logger glog.Logger) ([]core.Option, glog.Logger) {
	resolvedProvider, resolvedLogger := Resolve(DefaultName, provider, logger)
	return []core.Option{
		core.WithLoggerProvider(resolvedProvider),
		core.WithLogger(resolvedLogger),
	}, resolvedLogger
}
