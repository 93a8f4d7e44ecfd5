package egress

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"

	"github.com/conferly/backend/config"
)

// Client is the subset of the provider egress API the worker services use.
type Client interface {
	StartRoomCompositeEgress(ctx context.Context, req *livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error)
	StopEgress(ctx context.Context, req *livekit.StopEgressRequest) (*livekit.EgressInfo, error)
}

// tokenTransport signs a short-lived access token on every outbound request.
type tokenTransport struct {
	base      http.RoundTripper
	apiKey    string
	apiSecret string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	at := auth.NewAccessToken(t.apiKey, t.apiSecret).
		AddGrant(&auth.VideoGrant{RoomRecord: true}).
		SetValidFor(time.Minute)
	token, err := at.ToJWT()
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}

// NewClient builds a Twirp egress client for the configured provider. Every
// call is bounded by the configured request timeout. TLS verification can be
// disabled for local cluster setups where communications are unsecure.
func NewClient(cfg config.LiveKitConfig) Client {
	var base http.RoundTripper = http.DefaultTransport
	if !cfg.VerifySSL {
		base = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &tokenTransport{
			base:      base,
			apiKey:    cfg.APIKey,
			apiSecret: cfg.APISecret,
		},
	}
	return livekit.NewEgressProtobufClient(cfg.URL, httpClient)
}
