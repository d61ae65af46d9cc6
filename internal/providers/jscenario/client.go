package jscenario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Config controls the J-Scenario REST client.
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Logger         *log.Logger
}

// Client implements ports.ScenarioAPI and ports.InteractionAPI.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/api/"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:   base,
		http:   &http.Client{Transport: newTransport(cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)},
		logger: cfg.Logger,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base, nil
}

// BaseURL returns the normalized API base url.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveURL turns a media url from a response into an absolute url. Absolute
// urls are returned unchanged; relative ones resolve against the server origin.
func (c *Client) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return ref
	}
	origin := &url.URL{Scheme: c.base.Scheme, Host: c.base.Host, Path: "/"}
	return origin.ResolveReference(u).String()
}

type scenarioEnvelope struct {
	Scenario *domain.Scenario `json:"scenario"`
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
}

type interactionEnvelope struct {
	domain.Interaction
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) RandomScenario(ctx context.Context) (domain.Scenario, error) {
	return c.getScenario(ctx, "scenarios/random", "")
}

func (c *Client) ScenarioByID(ctx context.Context, id string) (domain.Scenario, error) {
	return c.getScenario(ctx, "scenarios/"+id, "scenarios/"+escapeSegment(id))
}

func (c *Client) getScenario(ctx context.Context, path, rawPath string) (domain.Scenario, error) {
	ref := &url.URL{Path: path, RawPath: rawPath}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return domain.Scenario{}, err
	}
	req.Header.Set("Accept", "application/json")

	var env scenarioEnvelope
	if err := c.do(req, &env); err != nil {
		return domain.Scenario{}, err
	}
	if !env.Success || env.Scenario == nil {
		return domain.Scenario{}, &domain.RejectedError{Message: env.Message}
	}
	return *env.Scenario, nil
}

func (c *Client) CreateInteraction(ctx context.Context, upload ports.InteractionUpload) (domain.Interaction, error) {
	body, contentType, err := buildInteractionForm(upload)
	if err != nil {
		return domain.Interaction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("interactions"), body)
	if err != nil {
		return domain.Interaction{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var env interactionEnvelope
	if err := c.do(req, &env); err != nil {
		return domain.Interaction{}, err
	}
	if !env.Success || env.InteractionID == "" {
		return domain.Interaction{}, &domain.RejectedError{Message: env.Message}
	}
	return env.Interaction, nil
}

func buildInteractionForm(upload ports.InteractionUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("scenario_id", upload.ScenarioID); err != nil {
		return nil, "", err
	}
	if upload.UserID != "" {
		if err := writer.WriteField("user_id", upload.UserID); err != nil {
			return nil, "", err
		}
	}

	file, err := os.Open(upload.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("audio_file", filepath.Base(upload.AudioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("reading audio file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (c *Client) endpoint(path string) string {
	return c.base.ResolveReference(&url.URL{Path: path}).String()
}

// escapeSegment escapes id as a single path segment. Dots are escaped too so
// "." and ".." cannot act as dot segments.
func escapeSegment(id string) string {
	return strings.ReplaceAll(url.PathEscape(id), ".", "%2E")
}

func (c *Client) do(req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("%s %s failed: %v", req.Method, req.URL.Path, err)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	c.logger.Printf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(started).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &domain.RejectedError{}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.DecodeError{Err: err}
	}
	return nil
}

func errorDetail(raw []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	return body.Message
}
