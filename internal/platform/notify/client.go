// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify pushes computed counters to the sibling catalogue and users
services.

Every call is a single authenticated PATCH carrying a small JSON body. The
caller's bearer token is forwarded so the sibling can apply its own
authorization.

Failure Model:

  - Non-2xx answers, transport errors and timeouts all become a
    DOWNSTREAM_ERROR [apperr.AppError].
  - The sibling's own `message` (or a body snippet) is kept as the detail.
  - Nothing is retried. An outbound rate limiter protects the siblings.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/constants"
)

// Service identifies a sibling service.
type Service int

const (
	// Catalogue is the book catalogue service (per-ISBN counters).
	Catalogue Service = iota
	// Users is the users service (per-user counters).
	Users
)

func (s Service) String() string {
	switch s {
	case Catalogue:
		return "catalogue"
	case Users:
		return "users"
	default:
		return "unknown"
	}
}

// maxSnippet bounds how much of a non-JSON error body is echoed back.
const maxSnippet = 256

// Options configures a [Client].
type Options struct {
	CatalogueURL string
	UsersURL     string
	Timeout      time.Duration
	RPS          float64
}

// Client issues PATCH calls to the sibling services.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURLs   map[Service]string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient builds a Client. A non-positive RPS disables the outbound limiter.
func NewClient(opts Options, logger *slog.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
		burst = max(1, int(opts.RPS))
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		baseURLs: map[Service]string{
			Catalogue: strings.TrimRight(opts.CatalogueURL, "/"),
			Users:     strings.TrimRight(opts.UsersURL, "/"),
		},
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Patch sends payload as JSON to the service's base URL joined with path.
//
// # Parameters
//   - service: Which sibling receives the call.
//   - path: Absolute path on the sibling, e.g. "/api/v1/books/{isbn}/downloads".
//   - bearer: The caller's raw token. Empty sends no Authorization header.
//   - payload: Any JSON-encodable value.
func (c *Client) Patch(ctx context.Context, service Service, path, bearer string, payload any) error {
	failMessage := fmt.Sprintf("Error al actualizar el servicio de %s", serviceLabel(service))

	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.Internal(fmt.Errorf("notify: encode payload: %w", err))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Downstream(failMessage, "límite de llamadas salientes alcanzado", err)
	}

	url := c.baseURLs[service] + path
	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return apperr.Internal(fmt.Errorf("notify: build request: %w", err))
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	startTime := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.WarnContext(ctx, "downstream_patch_failed",
			slog.String("service", service.String()),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return apperr.Downstream(failMessage, transportDetail(err), err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		detail := upstreamDetail(response.Body)
		c.logger.WarnContext(ctx, "downstream_patch_rejected",
			slog.String("service", service.String()),
			slog.String("path", path),
			slog.Int("status", response.StatusCode),
			slog.String("detail", detail),
		)
		return apperr.Downstream(failMessage, detail,
			fmt.Errorf("notify: %s answered %d", service, response.StatusCode))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, response.Body)

	c.logger.DebugContext(ctx, "downstream_patch_succeeded",
		slog.String("service", service.String()),
		slog.String("path", path),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return nil
}

func serviceLabel(service Service) string {
	if service == Users {
		return "usuarios"
	}
	return "catálogo"
}

func transportDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "tiempo de espera agotado"
	}
	return "servicio no disponible"
}

// upstreamDetail prefers the sibling's JSON `message`, falling back to a
// trimmed snippet of the raw body.
func upstreamDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	snippet := strings.TrimSpace(string(raw))
	if len(snippet) > maxSnippet {
		snippet = strings.ToValidUTF8(snippet[:maxSnippet], "")
	}
	return snippet
}
