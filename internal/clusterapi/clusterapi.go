// Package clusterapi proxies a fixed set of read only cluster APIs for alert
// monitors, removing response fields that are not meant to be exposed.
package clusterapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
)

const (
	ClusterHealthPath   = "/_cluster/health"
	ClusterStatsPath    = "/_cluster/stats"
	NodesHotThreadsPath = "/_nodes/hot_threads"
)

//go:embed supported_apis.yaml
var supportedAPIsYAML []byte

// Payloads maps an API path to response root keys and the field paths kept
// under each root.
type Payloads map[string]map[string][]string

// LoadPayloads parses a supported API table.
func LoadPayloads(data []byte) (Payloads, error) {
	var p Payloads
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse supported APIs: %w", err)
	}
	return p, nil
}

// DefaultPayloads is the built in supported API table.
func DefaultPayloads() Payloads {
	p, err := LoadPayloads(supportedAPIsYAML)
	if err != nil {
		panic(err)
	}
	return p
}

type Proxy struct {
	transport opensearchapi.Transport
	limiter   *rate.Limiter
	payloads  Payloads
	logger    *logging.Logger
}

func New(transport opensearchapi.Transport, payloads Payloads, ratePerSecond float64, burst int, logger *logging.Logger) *Proxy {
	return &Proxy{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		payloads:  payloads,
		logger:    logger,
	}
}

// ValidatePath returns the API path of raw when it is supported.
func (p *Proxy) ValidatePath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", models.Invalid("invalid API path: %s", raw)
	}
	path := "/" + strings.Trim(u.Path, "/")
	if _, ok := p.payloads[path]; !ok {
		return "", models.Invalid("API path not in supportedApiList: %s", path)
	}
	return path, nil
}

// Execute calls the API at path and returns its redacted response.
func (p *Proxy) Execute(ctx context.Context, raw string) (map[string]interface{}, error) {
	path, err := p.ValidatePath(raw)
	if err != nil {
		return nil, err
	}
	if !p.limiter.Allow() {
		return nil, &models.StatusError{Status: http.StatusTooManyRequests, Message: "too many cluster API requests"}
	}

	var res *opensearchapi.Response
	switch path {
	case ClusterHealthPath:
		res, err = opensearchapi.ClusterHealthRequest{}.Do(ctx, p.transport)
	case ClusterStatsPath:
		res, err = opensearchapi.ClusterStatsRequest{}.Do(ctx, p.transport)
	case NodesHotThreadsPath:
		res, err = opensearchapi.NodesHotThreadsRequest{}.Do(ctx, p.transport)
	default:
		return nil, models.Invalid("Unsupported API: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &models.StatusError{Status: res.StatusCode, Message: fmt.Sprintf("%s failed with status %d", path, res.StatusCode)}
	}

	if path == NodesHotThreadsPath {
		text, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", path, err)
		}
		return map[string]interface{}{"hot_threads": string(text)}, nil
	}

	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	p.logger.Debugf("Cluster API %s returned %d keys", path, len(body))
	return Redact(body, p.payloads[path]), nil
}

// Redact keeps, for every root key in supported, only the listed dotted
// paths. An empty table returns the response unchanged. A root that is not
// an object is copied whole, and a missing root becomes an empty object.
func Redact(response map[string]interface{}, supported map[string][]string) map[string]interface{} {
	if len(supported) == 0 {
		return response
	}
	out := make(map[string]interface{}, len(supported))
	for root, paths := range supported {
		value, ok := response[root]
		if !ok || value == nil {
			out[root] = map[string]interface{}{}
			continue
		}
		obj, isMap := value.(map[string]interface{})
		if !isMap {
			out[root] = value
			continue
		}
		filtered := map[string]interface{}{}
		for _, path := range paths {
			copyPath(obj, filtered, strings.Split(path, "."))
		}
		out[root] = filtered
	}
	return out
}

func copyPath(src, dst map[string]interface{}, parts []string) {
	value, ok := src[parts[0]]
	if !ok {
		return
	}
	if len(parts) == 1 {
		dst[parts[0]] = value
		return
	}
	next, ok := value.(map[string]interface{})
	if !ok {
		return
	}
	child, ok := dst[parts[0]].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		dst[parts[0]] = child
	}
	copyPath(next, child, parts[1:])
	if len(child) == 0 {
		delete(dst, parts[0])
	}
}
