package oauth2client

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-authprovider/core"
	"golang.org/x/oauth2"
)

const (
	defaultRedirectPath = "/callback"
	defaultStoreKey     = "default"
)

type Config struct {
	ClientID     string        `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string        `koanf:"client_secret" mapstructure:"client_secret"`
	Endpoint     core.Endpoint `koanf:"endpoint" mapstructure:"endpoint"`
	Scopes       []string      `koanf:"scopes" mapstructure:"scopes"`
	// CallbackPort is the loopback port for the redirect; 0 picks a free one.
	CallbackPort int    `koanf:"callback_port" mapstructure:"callback_port"`
	RedirectPath string `koanf:"redirect_path" mapstructure:"redirect_path"`
	StoreKey     string `koanf:"store_key" mapstructure:"store_key"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("oauth2client: client_id is required")
	}
	if err := c.Endpoint.Validate(); err != nil {
		return err
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("oauth2client: callback_port %d is out of range", c.CallbackPort)
	}
	return nil
}

func (c Config) normalized() Config {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.Scopes = core.NormalizeScopes(c.Scopes)
	c.RedirectPath = strings.TrimSpace(c.RedirectPath)
	if c.RedirectPath == "" {
		c.RedirectPath = defaultRedirectPath
	}
	if !strings.HasPrefix(c.RedirectPath, "/") {
		c.RedirectPath = "/" + c.RedirectPath
	}
	c.StoreKey = strings.TrimSpace(c.StoreKey)
	if c.StoreKey == "" {
		c.StoreKey = defaultStoreKey
	}
	return c
}

func (c Config) oauth2Config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       append([]string(nil), c.Scopes...),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.Endpoint.AuthorizeURL,
			TokenURL: c.Endpoint.TokenURL,
		},
	}
}
