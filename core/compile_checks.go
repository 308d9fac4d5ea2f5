package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Authenticator = (*Provider)(nil)
	_ Request       = (*HeaderMap)(nil)
	_ Request       = (*HTTPRequest)(nil)

	_ ResultHandle[struct{}] = (*Pending[struct{}])(nil)

	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
