package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver turns a logical service name into a dialable instance. The nacos
// client satisfies this.
type Resolver interface {
	DiscoverServiceInstance(serviceName string) (string, int, error)
}

// Client is a tracing HTTP client for service-to-service calls. Timeouts are
// owned entirely by the caller's context.
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	resolver   Resolver
}

func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	return &Client{
		Tracer: tracer,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		resolver: resolver,
	}
}

// CallService resolves serviceName, POSTs path with query params, and decodes
// a JSON response body into out when out is non-nil. Any non-200 status is an
// error.
func (c *Client) CallService(ctx context.Context, serviceName, path string, params url.Values, out any) error {
	ip, port, err := c.resolver.DiscoverServiceInstance(serviceName)
	if err != nil {
		return err
	}
	target := fmt.Sprintf("http://%s:%d%s", ip, port, path)
	return c.Post(ctx, target, params, out)
}

// Post issues a traced POST to an absolute URL.
func (c *Client) Post(ctx context.Context, rawURL string, params url.Values, out any) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	ctx, span := c.Tracer.Start(ctx, "call "+parsed.Host+parsed.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	q := parsed.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	parsed.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, parsed.String(), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(
		attribute.String("http.url", parsed.String()),
		attribute.String("http.method", http.MethodPost),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("service %s returned status %s", parsed.Host, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}
