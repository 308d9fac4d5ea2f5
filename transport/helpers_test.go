package transport

import (
	"time"

	"github.com/goliatone/go-authprovider/core"
)

type fakeSession struct {
	token string
}

func (s *fakeSession) AccessToken() string { return s.token }
func (s *fakeSession) Expiry() time.Time   { return time.Time{} }
func (s *fakeSession) IsExpired() bool     { return false }

type fakeIdentityClient struct {
	session core.Session
}

func (c *fakeIdentityClient) Login(core.UIOwner, core.AuthListener) {}
func (c *fakeIdentityClient) LoginSilent(core.AuthListener)         {}
func (c *fakeIdentityClient) Logout(core.AuthListener)              {}
func (c *fakeIdentityClient) CurrentSession() core.Session          { return c.session }
