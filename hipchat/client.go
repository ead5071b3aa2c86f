// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/hipchat/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string
	// Token is the initial auth token. May be empty and set later with
	// SetToken.
	Token string
	// Format is the initial response format for raw operations.
	Format Format
	// HTTPClient is used for all requests. If nil, a client with a
	// gzip/zstd-negotiating transport is created.
	HTTPClient *http.Client
	// Timeout bounds each request end to end. Zero means no timeout
	// beyond the context's deadline.
	Timeout time.Duration
	// Limiter, if set, is waited on before every request.
	Limiter *rate.Limiter
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is the HipChat API facade. Its configuration is guarded by a
// mutex and snapshotted at the start of every operation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu           sync.Mutex
	token        *secret.Buffer
	roomID       int
	sender       string
	format       Format
	notify       bool
	autoTruncate bool
	timezone     string
}

// NewClient creates a Client with format from config (JSON by default),
// notify off, auto-truncate on, no room, and no sender. The caller must
// call Close to release the token memory.
func NewClient(config ClientConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("hipchat: invalid BaseURL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("hipchat: BaseURL %q must be absolute", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: gzhttp.Transport(http.DefaultTransport)}
	}
	if config.Timeout > 0 {
		withTimeout := *httpClient
		withTimeout.Timeout = config.Timeout
		httpClient = &withTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
		limiter:      config.Limiter,
		logger:       logger,
		roomID:       UnsetRoomID,
		format:       config.Format,
		autoTruncate: true,
	}
	if config.Token != "" {
		if err := client.SetToken(config.Token); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Close releases the token memory. The Client must not be used afterward
// except for another Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil
	}
	err := c.token.Close()
	c.token = nil
	return err
}

// SetToken replaces the auth token. The value is moved into mmap-backed
// memory; an empty token clears it.
func (c *Client) SetToken(token string) error {
	var buffer *secret.Buffer
	if token != "" {
		var err error
		buffer, err = secret.NewFromString(token)
		if err != nil {
			return fmt.Errorf("hipchat: protecting auth token: %w", err)
		}
	}
	c.UseToken(buffer)
	return nil
}

// UseToken replaces the auth token with buffer and takes ownership of it;
// the Client closes it on the next replacement or on Close. A nil buffer
// clears the token.
func (c *Client) UseToken(buffer *secret.Buffer) {
	c.mu.Lock()
	previous := c.token
	c.token = buffer
	c.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
}

// HasToken reports whether an auth token is configured.
func (c *Client) HasToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil
}

// SetRoomID sets the default target room. Pass UnsetRoomID to clear it.
func (c *Client) SetRoomID(roomID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// RoomID returns the default target room, or UnsetRoomID.
func (c *Client) RoomID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// SetSender sets the default sender name. Names longer than
// MaxSenderLength are truncated when auto-truncate is on and rejected with
// a SenderTooLong *ValidationError otherwise, leaving the previous sender
// in place.
func (c *Client) SetSender(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sender, err := resolveSender(name, c.autoTruncate)
	if err != nil {
		return err
	}
	c.sender = sender
	return nil
}

// Sender returns the default sender name.
func (c *Client) Sender() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sender
}

// SetFormat sets the response format for ListRooms and RoomHistory.
func (c *Client) SetFormat(format Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = format
}

// Format returns the configured response format.
func (c *Client) Format() Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format
}

// SetNotify sets whether sent messages trigger notifications by default.
func (c *Client) SetNotify(notify bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = notify
}

// Notify returns the default notify flag.
func (c *Client) Notify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notify
}

// SetAutoTruncate controls whether over-long senders and messages are
// truncated (true, the default) or rejected.
func (c *Client) SetAutoTruncate(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoTruncate = enabled
}

// AutoTruncate returns the truncation policy.
func (c *Client) AutoTruncate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoTruncate
}

// SetTimezone sets the timezone name sent with history requests (e.g.,
// "America/New_York"). Empty omits the parameter and the server uses UTC.
func (c *Client) SetTimezone(timezone string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timezone = timezone
}

func (c *Client) snapshot() settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := settings{
		roomID:       c.roomID,
		sender:       c.sender,
		format:       c.format,
		notify:       c.notify,
		autoTruncate: c.autoTruncate,
		timezone:     c.timezone,
	}
	// The token leaves protected memory only for the lifetime of the call.
	if c.token != nil {
		current.token = c.token.String()
	}
	return current
}

// SendOption overrides a Client default for a single SendMessage call.
type SendOption func(*sendOptions)

type sendOptions struct {
	roomID        *int
	sender        *string
	notify        *bool
	color         Color
	messageFormat MessageFormat
}

// WithRoom sends to roomID instead of the Client's room.
func WithRoom(roomID int) SendOption {
	return func(options *sendOptions) { options.roomID = &roomID }
}

// WithSender sends as name instead of the Client's sender. The same
// length rule as SetSender applies.
func WithSender(name string) SendOption {
	return func(options *sendOptions) { options.sender = &name }
}

// WithNotify overrides the Client's notify flag.
func WithNotify(notify bool) SendOption {
	return func(options *sendOptions) { options.notify = &notify }
}

// WithColor sets the background color hint.
func WithColor(color Color) SendOption {
	return func(options *sendOptions) { options.color = color }
}

// WithMessageFormat sets how the server renders the message.
func WithMessageFormat(format MessageFormat) SendOption {
	return func(options *sendOptions) { options.messageFormat = format }
}

// SendMessage posts message to a room. Room and sender default to the
// Client's configuration. Preconditions are checked in order (token, room,
// sender, message) before any network call; a message over
// MaxMessageLength is cut to MaxMessageLength-3 characters plus "..." when
// auto-truncate is on. The server's success body carries nothing useful
// and is discarded.
func (c *Client) SendMessage(ctx context.Context, message string, options ...SendOption) error {
	current := c.snapshot()

	var resolved sendOptions
	for _, option := range options {
		option(&resolved)
	}

	params := sendParams{
		roomID:        current.roomID,
		sender:        current.sender,
		notify:        current.notify,
		color:         resolved.color,
		messageFormat: resolved.messageFormat,
	}
	if resolved.roomID != nil {
		params.roomID = *resolved.roomID
	}
	if resolved.sender != nil {
		params.sender = *resolved.sender
	}
	if resolved.notify != nil {
		params.notify = *resolved.notify
	}

	if current.token == "" {
		return validationError(MissingToken, "auth token must be set before sending a message")
	}
	if params.roomID == UnsetRoomID {
		return validationError(MissingRoom, "room id must be set before sending a message")
	}
	if params.sender == "" {
		return validationError(MissingSender, "sender name must be set before sending a message")
	}
	sender, err := resolveSender(params.sender, current.autoTruncate)
	if err != nil {
		return err
	}
	params.sender = sender
	if message == "" {
		return validationError(EmptyMessage, "cannot send an empty message")
	}
	params.message, err = prepareMessage(message, current.autoTruncate)
	if err != nil {
		return err
	}
	if !params.color.Valid() {
		return validationError(InvalidOption, "unknown color %q", params.color)
	}
	if !params.messageFormat.Valid() {
		return validationError(InvalidOption, "unknown message format %q", params.messageFormat)
	}

	if _, err := c.do(ctx, buildSendMessage(c.baseURL, current, params)); err != nil {
		return err
	}

	c.logger.Info("sent hipchat message",
		"room_id", params.roomID,
		"from", params.sender,
		"length", len(params.message),
	)
	return nil
}

// ListRooms returns the raw rooms/list response in the configured format.
func (c *Client) ListRooms(ctx context.Context) (string, error) {
	body, err := c.listRooms(ctx, c.snapshot())
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ListRoomsAsEntities returns every room visible to the token, in server
// order. XML is requested for this call only.
func (c *Client) ListRoomsAsEntities(ctx context.Context) ([]Room, error) {
	current := c.snapshot()
	current.format = FormatXML

	body, err := c.listRooms(ctx, current)
	if err != nil {
		return nil, err
	}
	return DecodeRooms(body)
}

func (c *Client) listRooms(ctx context.Context, current settings) ([]byte, error) {
	if current.token == "" {
		return nil, validationError(MissingToken, "auth token must be set before listing rooms")
	}
	return c.do(ctx, buildListRooms(c.baseURL, current))
}

// RoomHistory returns the raw rooms/history response for the Client's room
// in the configured format. A nil date requests the most recent messages;
// otherwise the messages of that calendar day.
func (c *Client) RoomHistory(ctx context.Context, date *time.Time) (string, error) {
	body, err := c.roomHistory(ctx, c.snapshot(), date)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RoomHistoryAsEntities is RoomHistory decoded into messages, in server
// order. XML is requested for this call only.
func (c *Client) RoomHistoryAsEntities(ctx context.Context, date *time.Time) ([]Message, error) {
	return c.roomHistoryEntities(ctx, c.snapshot(), date)
}

func (c *Client) roomHistoryEntities(ctx context.Context, current settings, date *time.Time) ([]Message, error) {
	current.format = FormatXML
	body, err := c.roomHistory(ctx, current, date)
	if err != nil {
		return nil, err
	}
	return DecodeMessages(body)
}

func (c *Client) roomHistory(ctx context.Context, current settings, date *time.Time) ([]byte, error) {
	if current.token == "" {
		return nil, validationError(MissingToken, "auth token must be set before fetching room history")
	}
	if current.roomID == UnsetRoomID {
		return nil, validationError(MissingRoom, "room id must be set before fetching room history")
	}
	return c.do(ctx, buildRoomHistory(c.baseURL, current, historyDate(date)))
}
