package fraud

import (
	"context"
	"net/url"

	"github.com/richxcame/gear-rental/pkg/httpclient"
	"github.com/richxcame/gear-rental/pkg/resilience"
	"github.com/richxcame/gear-rental/pkg/tracing"
)

// HTTPReputation asks a remote IP intelligence service whether an address
// is anonymizing. The service answers GET /v1/ip/{ip} with
// {"anonymizing": bool}.
type HTTPReputation struct {
	client *httpclient.Client
}

// NewHTTPReputation creates a provider backed by client
func NewHTTPReputation(client *httpclient.Client) *HTTPReputation {
	return &HTTPReputation{client: client}
}

type reputationResponse struct {
	Anonymizing bool `json:"anonymizing"`
}

// IsAnonymizing implements ReputationProvider
func (r *HTTPReputation) IsAnonymizing(ctx context.Context, ip string) (bool, error) {
	var resp reputationResponse
	if err := r.client.GetJSON(ctx, "/v1/ip/"+url.PathEscape(ip), &resp); err != nil {
		return false, err
	}
	return resp.Anonymizing, nil
}

// BreakerReputation guards a ReputationProvider with a circuit breaker so an
// unhealthy provider stops receiving calls. An open breaker surfaces as
// resilience.ErrCircuitOpen, which the device analyzer treats like any other
// enrichment failure.
type BreakerReputation struct {
	provider ReputationProvider
	breaker  *resilience.CircuitBreaker
}

// NewBreakerReputation wraps provider with breaker
func NewBreakerReputation(provider ReputationProvider, breaker *resilience.CircuitBreaker) *BreakerReputation {
	return &BreakerReputation{provider: provider, breaker: breaker}
}

// IsAnonymizing implements ReputationProvider
func (r *BreakerReputation) IsAnonymizing(ctx context.Context, ip string) (bool, error) {
	var anonymizing bool
	err := tracing.TraceExternalAPI(ctx, tracerName, "reputation", "is_anonymizing", func(ctx context.Context) error {
		result, err := r.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
			return r.provider.IsAnonymizing(ctx, ip)
		})
		if err != nil {
			return err
		}
		anonymizing, _ = result.(bool)
		return nil
	})
	return anonymizing, err
}
