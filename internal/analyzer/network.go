package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const (
	maxRetries   = 3
	maxPageBytes = 5 << 20
	maxRedirects = 5
)

var initialBackoff = 1 * time.Second

var (
	ErrInvalidURL     = errors.New("invalid page url")
	ErrPageStatus     = errors.New("unexpected page status")
	ErrPageOversized  = errors.New("page exceeds size limit")
	ErrBlockedAddress = errors.New("page address is not public")
)

// nonPublicPrefixes are ranges netip does not classify as private but that
// never host public pages.
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

var client = newPublicClient(10 * time.Second)

// newPublicClient returns a client that only connects to public unicast
// addresses. The check runs on the resolved address of every connection,
// so redirects and DNS answers pointing inward are refused too.
func newPublicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseNonPublic,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !isValidURL(req.URL.String()) {
				return fmt.Errorf("%w: redirect to %s", ErrInvalidURL, req.URL.Redacted())
			}
			return nil
		},
	}
}

func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, prefix := range nonPublicPrefixes {
		if prefix.Contains(addr) {
			return false
		}
	}
	return true
}

// FetchPage downloads the markup of a page, retrying transient failures
// with exponential backoff.
func FetchPage(ctx context.Context, logger *slog.Logger, pageURL string) (string, error) {
	logger.DebugContext(ctx, "Starting to load web page")

	var lastErr error
	backoff := initialBackoff

	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		logger.DebugContext(ctx, "Attempting to fetch page", slog.Int("attempt", attempt))

		markup, err := fetchOnce(ctx, pageURL)
		if err == nil {
			logger.InfoContext(ctx, "Successfully fetched page",
				slog.Int("attempt", attempt),
				slog.Int("bytes", len(markup)),
			)
			return markup, nil
		}
		lastErr = err

		if errors.Is(err, ErrPageOversized) || errors.Is(err, ErrBlockedAddress) ||
			errors.Is(err, ErrInvalidURL) || ctx.Err() != nil {
			break
		}

		if i < maxRetries-1 {
			logger.WarnContext(ctx, "Fetch attempt failed, retrying...",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
				slog.Duration("backoff_duration", backoff),
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("fetching %s: %w", pageURL, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	logger.ErrorContext(ctx, "Failed to fetch page after all attempts",
		slog.Int("max_retries", maxRetries),
		slog.Any("last_error", lastErr),
	)
	return "", fmt.Errorf("fetching %s: %w", pageURL, lastErr)
}

func fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", ErrPageStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxPageBytes {
		return "", ErrPageOversized
	}

	return string(body), nil
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host != "" && strings.Contains(host, ".")
}
