package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-authprovider/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "authprovider_login_total", sanitizeName("authprovider.login.total"))
	assert.Equal(t, "_1st_metric", sanitizeName("1st-metric"))
	assert.Equal(t, "", sanitizeName("  "))
}

func TestRecorderRegistersCountersAndHistograms(t *testing.T) {
	recorder := NewRecorder(Config{Namespace: "app"})
	ctx := context.Background()
	tags := map[string]string{"operation": "login", "status": "success"}

	recorder.IncCounter(ctx, "authprovider.login.total", 1, tags)
	recorder.IncCounter(ctx, "authprovider.login.total", 2, tags)
	recorder.ObserveHistogram(ctx, "authprovider.login.duration_ms", 42, tags)

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				byName[family.GetName()] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				byName[family.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.Equal(t, float64(3), byName["app_authprovider_login_total"])
	assert.Equal(t, float64(1), byName["app_authprovider_login_duration_ms"])
}

func TestRecorderDropsUnknownLabelsAfterFirstUse(t *testing.T) {
	recorder := NewRecorder(Config{})
	ctx := context.Background()

	recorder.IncCounter(ctx, "authprovider.logout.total", 1, map[string]string{"status": "success"})
	assert.NotPanics(t, func() {
		recorder.IncCounter(ctx, "authprovider.logout.total", 1, map[string]string{"status": "failure", "extra": "x"})
	})

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Len(t, families[0].GetMetric(), 2)
}

func TestRecorderHandlerServesProviderMetrics(t *testing.T) {
	recorder := NewRecorder(Config{})
	provider, err := core.NewProvider(core.Config{ClientID: "client-1"}, noSessionClient{}, core.WithMetricsRecorder(recorder))
	require.NoError(t, err)

	err = provider.AuthenticateRequest(context.Background(), core.NewRequest("https://api.example"))
	require.Error(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "authprovider_authenticate_request_total"), body)
}

type noSessionClient struct{}

func (noSessionClient) Login(core.UIOwner, core.AuthListener) {}
func (noSessionClient) LoginSilent(core.AuthListener)         {}
func (noSessionClient) Logout(core.AuthListener)              {}
func (noSessionClient) CurrentSession() core.Session          { return nil }
