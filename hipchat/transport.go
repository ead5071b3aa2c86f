// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/hipchat/lib/netutil"
	"github.com/bureau-foundation/hipchat/lib/version"
)

// do performs one request and returns the response body. On 2xx the body
// is returned verbatim. On any other status the body is read completely
// and returned inside an *APIError. The response body is closed on every
// path.
func (c *Client) do(ctx context.Context, request Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("hipchat: waiting to send %s: %w", request.Endpoint, err)
		}
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, request.URL, nil)
	if err != nil {
		// The URL embeds the token, so report the endpoint only.
		return nil, fmt.Errorf("hipchat: failed to create %s request: %w", request.Endpoint, unwrapURLError(err))
	}
	httpRequest.Header.Set("User-Agent", version.UserAgent())
	if request.Method == http.MethodPost {
		httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("hipchat: request to %s %s failed: %w", request.Method, request.Endpoint, unwrapURLError(err))
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("hipchat: failed to read %s response body: %w", request.Endpoint, err)
	}

	c.logger.Debug("hipchat request completed",
		"method", request.Method,
		"endpoint", request.Endpoint,
		"status", response.StatusCode,
		"bytes", len(responseBody),
	)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return nil, newAPIError(response.StatusCode, responseBody)
}

// unwrapURLError strips the *url.Error wrapper that net/http adds, because
// its message repeats the full request URL including auth_token.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
