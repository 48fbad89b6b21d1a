package syncgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/gridline/internal/record"
)

// TokenHeader carries the request correlation token.
const TokenHeader = "X-Request-Token"

// requestTimeout bounds every remote call. Calls are otherwise not
// cancellable once issued; a stale in-flight call whose record has
// since been deleted locally will still fire.
const requestTimeout = 30 * time.Second

// Doer is the minimal HTTP client surface the gateway needs.
// *http.Client satisfies it; tests substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPGateway talks JSON to the remote collection resource:
//
//	GET    {base}/users        full collection
//	POST   {base}/users        create {name, age, address:{city}, date?}
//	PUT    {base}/users/{id}   update, same body shape
//	DELETE {base}/users/{id}   delete, no body
type HTTPGateway struct {
	base   string
	client Doer
	tokens TokenGenerator
	now    func() time.Time
	rng    *rand.Rand
}

// HTTPOption configures an HTTPGateway.
type HTTPOption func(*HTTPGateway)

// WithClient substitutes the HTTP client (tests, custom transports).
func WithClient(c Doer) HTTPOption {
	return func(g *HTTPGateway) { g.client = c }
}

// WithTokenGenerator substitutes the correlation token source.
func WithTokenGenerator(t TokenGenerator) HTTPOption {
	return func(g *HTTPGateway) { g.tokens = t }
}

// WithNow substitutes the wall clock used for generated default dates.
func WithNow(now func() time.Time) HTTPOption {
	return func(g *HTTPGateway) { g.now = now }
}

// WithRand substitutes the randomness source for generated defaults.
func WithRand(rng *rand.Rand) HTTPOption {
	return func(g *HTTPGateway) { g.rng = rng }
}

// NewHTTPGateway creates a gateway against the given base URL.
func NewHTTPGateway(base string, opts ...HTTPOption) *HTTPGateway {
	g := &HTTPGateway{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: requestTimeout},
		tokens: UUIDv7Generator{},
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// payload is the wire body for create and update.
type payload struct {
	Name    string  `json:"name"`
	Age     int     `json:"age"`
	Address address `json:"address"`
	Date    string  `json:"date,omitempty"`
}

type address struct {
	City string `json:"city"`
}

// sourceRecord is the external collection shape. Age and date may be
// absent upstream; the gateway fills both with generated defaults.
type sourceRecord struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Age     *int    `json:"age"`
	Address address `json:"address"`
	Date    string  `json:"date"`
}

// Fetch loads the remote collection and maps it into table records.
func (g *HTTPGateway) Fetch(ctx context.Context) ([]record.Record, error) {
	token := g.tokens.Generate()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set(TokenHeader, token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch collection: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch collection: remote returned %s", resp.Status)
	}

	var sources []sourceRecord
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	records := make([]record.Record, 0, len(sources))
	for _, s := range sources {
		records = append(records, g.mapSource(s))
	}
	slog.Info("collection fetched", "token", token, "records", len(records))
	return records, nil
}

// mapSource converts one external record, generating defaults for
// fields the source omits: age uniform in [20,70), date uniform between
// 2020-01-01 and now, formatted DD/MM/YYYY.
func (g *HTTPGateway) mapSource(s sourceRecord) record.Record {
	r := record.Record{
		ID:      s.ID,
		Name:    s.Name,
		Country: s.Address.City,
		Date:    s.Date,
	}
	if r.Country == "" {
		r.Country = "Unknown"
	}
	if s.Age != nil {
		r.Age = *s.Age
	} else {
		r.Age = 20 + g.rng.Intn(50)
	}
	if r.Date == "" {
		r.Date = g.randomDate()
	}
	return r
}

// randomDate draws a day uniformly between 2020-01-01 and now.
func (g *HTTPGateway) randomDate() string {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	span := g.now().Unix() - start.Unix()
	if span <= 0 {
		span = 1
	}
	return time.Unix(start.Unix()+g.rng.Int63n(span), 0).UTC().Format("02/01/2006")
}

// Submit replays one mutation. The returned Result carries the request
// token so log lines and notifications can be correlated.
func (g *HTTPGateway) Submit(ctx context.Context, rec record.Record, intent Intent) Result {
	token := g.tokens.Generate()
	result := Result{Token: token, Intent: intent, RecordID: rec.ID}

	req, err := g.buildRequest(ctx, rec, intent, token)
	if err != nil {
		result.Err = err
		return result
	}

	resp, err := g.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("%s record %d: %w", intent, rec.ID, err)
		return result
	}
	defer resp.Body.Close()
	// The create response carries a server-assigned identity. It is
	// read and discarded: the client-minted id stays the permanent key.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Err = fmt.Errorf("%s record %d: remote returned %s", intent, rec.ID, resp.Status)
		return result
	}

	slog.Debug("mutation replayed", "token", token, "intent", intent.String(), "id", rec.ID)
	return result
}

func (g *HTTPGateway) buildRequest(ctx context.Context, rec record.Record, intent Intent, token string) (*http.Request, error) {
	var (
		method string
		url    string
		body   io.Reader
	)

	switch intent {
	case IntentCreate, IntentUpdate:
		data, err := json.Marshal(payload{
			Name:    rec.Name,
			Age:     rec.Age,
			Address: address{City: rec.Country},
			Date:    rec.Date,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
		if intent == IntentCreate {
			method, url = http.MethodPost, g.base+"/users"
		} else {
			method, url = http.MethodPut, fmt.Sprintf("%s/users/%d", g.base, rec.ID)
		}
	case IntentDelete:
		method, url = http.MethodDelete, fmt.Sprintf("%s/users/%d", g.base, rec.ID)
	default:
		return nil, fmt.Errorf("unknown intent %d", int(intent))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", intent, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(TokenHeader, token)
	return req, nil
}
