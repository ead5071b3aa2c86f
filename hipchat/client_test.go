// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/hipchat/lib/testutil"
)

type response struct {
	status int
	body   string
}

type recordedRequest struct {
	method    string
	path      string
	rawQuery  string
	userAgent string
	query     map[string]string
}

// apiServer is a fake HipChat endpoint. Responses are keyed by path
// relative to the base URL ("rooms/list"); unknown paths get 404.
type apiServer struct {
	server    *httptest.Server
	responses map[string]response

	mu       sync.Mutex
	requests []recordedRequest
}

func newAPIServer(t *testing.T, responses map[string]response) *apiServer {
	t.Helper()
	api := &apiServer{responses: responses}
	api.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := make(map[string]string)
		for key, values := range request.URL.Query() {
			query[key] = values[0]
		}
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			method:    request.Method,
			path:      request.URL.Path,
			rawQuery:  request.URL.RawQuery,
			userAgent: request.Header.Get("User-Agent"),
			query:     query,
		})
		api.mu.Unlock()

		canned, ok := api.responses[strings.TrimPrefix(request.URL.Path, "/v1/")]
		if !ok {
			writer.WriteHeader(http.StatusNotFound)
			fmt.Fprint(writer, "Not Found")
			return
		}
		status := canned.status
		if status == 0 {
			status = http.StatusOK
		}
		writer.WriteHeader(status)
		fmt.Fprint(writer, canned.body)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *apiServer) recorded() []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedRequest(nil), a.requests...)
}

func (a *apiServer) baseURL() string {
	return a.server.URL + "/v1"
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a Client pointed at api with the given token.
// The Client is closed when the test completes.
func newTestClient(t *testing.T, api *apiServer, token string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:    api.baseURL(),
		Token:      token,
		HTTPClient: api.server.Client(),
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient(ClientConfig{})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		defer client.Close()

		if client.baseURL != DefaultBaseURL {
			t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
		}
		if client.Format() != FormatJSON {
			t.Errorf("format = %v, want json", client.Format())
		}
		if client.Notify() {
			t.Error("notify should default to false")
		}
		if !client.AutoTruncate() {
			t.Error("auto-truncate should default to true")
		}
		if client.RoomID() != UnsetRoomID {
			t.Errorf("room = %d, want UnsetRoomID", client.RoomID())
		}
		if client.Sender() != "" || client.HasToken() {
			t.Error("sender and token should start empty")
		}
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://localhost:8080/v1/"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		defer client.Close()
		if client.baseURL != "http://localhost:8080/v1" {
			t.Errorf("baseURL = %q", client.baseURL)
		}
	})

	t.Run("relative URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{BaseURL: "api.hipchat.com/v1"}); err == nil {
			t.Fatal("expected error for relative URL")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{BaseURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid URL")
		}
	})

	t.Run("timeout copies the HTTP client", func(t *testing.T) {
		shared := &http.Client{}
		client, err := NewClient(ClientConfig{HTTPClient: shared, Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		defer client.Close()
		if shared.Timeout != 0 {
			t.Error("caller's http.Client was modified")
		}
		if client.httpClient.Timeout != 5*time.Second {
			t.Errorf("timeout = %s, want 5s", client.httpClient.Timeout)
		}
	})
}

func TestToken(t *testing.T) {
	client, err := NewClient(ClientConfig{Token: "first"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if !client.HasToken() || client.snapshot().token != "first" {
		t.Fatal("initial token not stored")
	}
	if err := client.SetToken("second"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if client.snapshot().token != "second" {
		t.Error("token not replaced")
	}
	if err := client.SetToken(""); err != nil {
		t.Fatalf("SetToken(\"\"): %v", err)
	}
	if client.HasToken() {
		t.Error("empty token should clear it")
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSetSender(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		autoTruncate bool
		want         string
		wantKind     ValidationKind
	}{
		{name: "short", input: "bot", autoTruncate: true, want: "bot"},
		{name: "exactly fifteen", input: "abcdefghijklmno", autoTruncate: false, want: "abcdefghijklmno"},
		{name: "truncated", input: "abcdefghijklmnopqrst", autoTruncate: true, want: "abcdefghijklmno"},
		{name: "rejected", input: "abcdefghijklmnopqrst", autoTruncate: false, wantKind: SenderTooLong},
		{name: "multibyte counted as characters", input: "ééééééééééééééééé", autoTruncate: true, want: "ééééééééééééééé"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			defer client.Close()

			client.SetAutoTruncate(test.autoTruncate)
			if err := client.SetSender("previous"); err != nil {
				t.Fatalf("SetSender: %v", err)
			}

			err = client.SetSender(test.input)
			if test.wantKind != 0 {
				if !IsValidationError(err, test.wantKind) {
					t.Fatalf("SetSender(%q) = %v, want %s", test.input, err, test.wantKind)
				}
				if client.Sender() != "previous" {
					t.Errorf("rejected sender replaced the previous one: %q", client.Sender())
				}
				return
			}
			if err != nil {
				t.Fatalf("SetSender(%q): %v", test.input, err)
			}
			if client.Sender() != test.want {
				t.Errorf("Sender() = %q, want %q", client.Sender(), test.want)
			}
		})
	}
}

func TestSendMessage_ValidationOrder(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/message": {body: `{"status":"sent"}`}})

	tests := []struct {
		name     string
		token    string
		roomID   int
		sender   string
		message  string
		wantKind ValidationKind
	}{
		{name: "nothing set", roomID: UnsetRoomID, wantKind: MissingToken},
		{name: "token only", token: "t", roomID: UnsetRoomID, wantKind: MissingRoom},
		{name: "no sender", token: "t", roomID: 1, wantKind: MissingSender},
		{name: "no message", token: "t", roomID: 1, sender: "bot", wantKind: EmptyMessage},
		{name: "token checked before message", roomID: 1, sender: "bot", message: "hi", wantKind: MissingToken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, api, test.token)
			client.SetRoomID(test.roomID)
			if test.sender != "" {
				if err := client.SetSender(test.sender); err != nil {
					t.Fatalf("SetSender: %v", err)
				}
			}

			err := client.SendMessage(context.Background(), test.message)
			if !IsValidationError(err, test.wantKind) {
				t.Fatalf("SendMessage() = %v, want %s", err, test.wantKind)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("validation error does not match ErrValidation")
			}
		})
	}

	if requests := api.recorded(); len(requests) != 0 {
		t.Errorf("validation failures reached the server: %+v", requests)
	}
}

func TestSendMessage_NoTokenWithOverrides(t *testing.T) {
	api := newAPIServer(t, nil)
	client := newTestClient(t, api, "")

	err := client.SendMessage(context.Background(), "hi", WithRoom(42), WithSender("bot"))
	if !IsValidationError(err, MissingToken) {
		t.Fatalf("SendMessage() = %v, want MissingToken", err)
	}
	if len(api.recorded()) != 0 {
		t.Error("request sent without a token")
	}
}

func TestSendMessage_Request(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/message": {body: `{"status":"sent"}`}})
	client := newTestClient(t, api, "abc 123")
	client.SetRoomID(42)
	if err := client.SetSender("Build Bot"); err != nil {
		t.Fatalf("SetSender: %v", err)
	}

	if err := client.SendMessage(context.Background(), "deploy & test=ok #1 100%"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	requests := api.recorded()
	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	request := requests[0]
	if request.method != http.MethodPost || request.path != "/v1/rooms/message" {
		t.Errorf("request = %s %s", request.method, request.path)
	}
	wantQuery := "auth_token=abc%20123&room_id=42&format=json&notify=0&from=Build%20Bot&message=deploy%20%26%20test%3Dok%20%231%20100%25"
	if request.rawQuery != wantQuery {
		t.Errorf("raw query =\n  %s\nwant\n  %s", request.rawQuery, wantQuery)
	}
	if request.query["message"] != "deploy & test=ok #1 100%" {
		t.Errorf("message decoded to %q", request.query["message"])
	}
	if !strings.HasPrefix(request.userAgent, "hipchat-go/") {
		t.Errorf("User-Agent = %q", request.userAgent)
	}
}

func TestSendMessage_Options(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/message": {body: `{"status":"sent"}`}})
	client := newTestClient(t, api, "t")
	client.SetRoomID(1)
	if err := client.SetSender("default"); err != nil {
		t.Fatalf("SetSender: %v", err)
	}

	err := client.SendMessage(context.Background(), "hi",
		WithRoom(0), WithSender("override"), WithNotify(true),
		WithColor(ColorRed), WithMessageFormat(MessageFormatText))
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	query := api.recorded()[0].query
	for key, want := range map[string]string{
		"room_id":        "0",
		"from":           "override",
		"notify":         "1",
		"color":          "red",
		"message_format": "text",
	} {
		if query[key] != want {
			t.Errorf("%s = %q, want %q", key, query[key], want)
		}
	}

	// Options apply to one call only.
	if client.RoomID() != 1 || client.Sender() != "default" || client.Notify() {
		t.Error("SendOptions changed the Client's defaults")
	}

	sent := len(api.recorded())
	for _, option := range []SendOption{WithColor("blue"), WithMessageFormat("markdown")} {
		err := client.SendMessage(context.Background(), "hi", option)
		if !IsValidationError(err, InvalidOption) || !errors.Is(err, ErrValidation) {
			t.Errorf("SendMessage with bad option = %v, want InvalidOption validation error", err)
		}
	}
	if len(api.recorded()) != sent {
		t.Error("invalid options reached the server")
	}
}

func TestSendMessage_Truncation(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/message": {body: `{"status":"sent"}`}})
	long := strings.Repeat("é", 6000)

	t.Run("auto-truncate", func(t *testing.T) {
		client := newTestClient(t, api, "t")
		client.SetRoomID(1)
		client.SetSender("bot")

		if err := client.SendMessage(context.Background(), long); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
		requests := api.recorded()
		sent := requests[len(requests)-1].query["message"]
		if count := utf8.RuneCountInString(sent); count != MaxMessageLength {
			t.Errorf("sent %d characters, want %d", count, MaxMessageLength)
		}
		if !strings.HasSuffix(sent, "...") {
			t.Errorf("truncated message does not end with ...")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, api, "t")
		client.SetRoomID(1)
		client.SetSender("bot")
		client.SetAutoTruncate(false)

		before := len(api.recorded())
		err := client.SendMessage(context.Background(), long)
		if !IsValidationError(err, MessageTooLong) {
			t.Fatalf("SendMessage() = %v, want MessageTooLong", err)
		}
		if len(api.recorded()) != before {
			t.Error("rejected message reached the server")
		}
	})

	t.Run("long override sender", func(t *testing.T) {
		client := newTestClient(t, api, "t")
		client.SetRoomID(1)
		client.SetAutoTruncate(false)

		err := client.SendMessage(context.Background(), "hi", WithSender("a-very-long-sender-name"))
		if !IsValidationError(err, SenderTooLong) {
			t.Fatalf("SendMessage() = %v, want SenderTooLong", err)
		}
	})
}

func TestListRooms_APIError(t *testing.T) {
	api := newAPIServer(t, map[string]response{
		"rooms/list": {status: http.StatusUnauthorized, body: "Unauthorized"},
	})
	client := newTestClient(t, api, "bad-token")

	_, err := client.ListRooms(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListRooms() = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Detail != "Unauthorized" {
		t.Errorf("APIError = %+v, want {401, Unauthorized}", apiErr)
	}
	if !IsAPIError(err, http.StatusUnauthorized) {
		t.Error("IsAPIError(err, 401) = false")
	}
	if strings.Contains(err.Error(), "bad-token") {
		t.Errorf("error leaks the token: %v", err)
	}
}

func TestListRooms_RawAndFormat(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/list": {body: `{"rooms":[]}`}})
	client := newTestClient(t, api, "t")

	body, err := client.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if body != `{"rooms":[]}` {
		t.Errorf("body = %q", body)
	}
	if got := api.recorded()[0].rawQuery; got != "format=json&auth_token=t" {
		t.Errorf("raw query = %q", got)
	}

	client.SetFormat(FormatXML)
	if _, err := client.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if got := api.recorded()[1].query["format"]; got != "xml" {
		t.Errorf("format = %q, want xml", got)
	}
}

func TestListRooms_RequiresToken(t *testing.T) {
	api := newAPIServer(t, nil)
	client := newTestClient(t, api, "")

	if _, err := client.ListRooms(context.Background()); !IsValidationError(err, MissingToken) {
		t.Errorf("ListRooms() = %v, want MissingToken", err)
	}
	if _, err := client.ListRoomsAsEntities(context.Background()); !IsValidationError(err, MissingToken) {
		t.Errorf("ListRoomsAsEntities() = %v, want MissingToken", err)
	}
}

func TestEntityOperationsKeepFormat(t *testing.T) {
	api := newAPIServer(t, map[string]response{
		"rooms/list":    {body: sampleRoomsXML},
		"rooms/history": {body: sampleMessagesXML},
	})
	client := newTestClient(t, api, "t")
	client.SetRoomID(7)

	rooms, err := client.ListRoomsAsEntities(context.Background())
	if err != nil {
		t.Fatalf("ListRoomsAsEntities: %v", err)
	}
	if len(rooms) != 3 {
		t.Errorf("got %d rooms, want 3", len(rooms))
	}
	if _, err := client.RoomHistoryAsEntities(context.Background(), nil); err != nil {
		t.Fatalf("RoomHistoryAsEntities: %v", err)
	}
	if client.Format() != FormatJSON {
		t.Errorf("Format() = %v after entity calls, want json", client.Format())
	}
	if _, err := client.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms: %v", err)
	}

	requests := api.recorded()
	wantFormats := []string{"xml", "xml", "json"}
	for index, want := range wantFormats {
		if got := requests[index].query["format"]; got != want {
			t.Errorf("request %d format = %q, want %q", index, got, want)
		}
	}
}

func TestRoomHistory_Dates(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/history": {body: sampleMessagesXML}})
	client := newTestClient(t, api, "t")
	client.SetRoomID(7)

	if _, err := client.RoomHistory(context.Background(), nil); err != nil {
		t.Fatalf("RoomHistory(nil): %v", err)
	}
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if _, err := client.RoomHistory(context.Background(), &date); err != nil {
		t.Fatalf("RoomHistory(date): %v", err)
	}
	client.SetTimezone("America/New_York")
	if _, err := client.RoomHistory(context.Background(), nil); err != nil {
		t.Fatalf("RoomHistory with timezone: %v", err)
	}

	requests := api.recorded()
	if got := requests[0].rawQuery; got != "room_id=7&date=recent&format=json&auth_token=t" {
		t.Errorf("recent query = %q", got)
	}
	if got := requests[1].query["date"]; got != "2024-03-05" {
		t.Errorf("date = %q, want 2024-03-05", got)
	}
	if got := requests[2].query["timezone"]; got != "America/New_York" {
		t.Errorf("timezone = %q", got)
	}
	if requests[0].method != http.MethodGet || requests[0].path != "/v1/rooms/history" {
		t.Errorf("request = %s %s", requests[0].method, requests[0].path)
	}
}

func TestRoomHistory_RequiresRoom(t *testing.T) {
	api := newAPIServer(t, nil)
	client := newTestClient(t, api, "t")

	if _, err := client.RoomHistory(context.Background(), nil); !IsValidationError(err, MissingRoom) {
		t.Errorf("RoomHistory() = %v, want MissingRoom", err)
	}
	if len(api.recorded()) != 0 {
		t.Error("request sent without a room")
	}
}

func TestRoomHistoryAsEntities_DecodeError(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/history": {body: "<messages><message><date>soon</date></message></messages>"}})
	client := newTestClient(t, api, "t")
	client.SetRoomID(7)

	_, err := client.RoomHistoryAsEntities(context.Background(), nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("RoomHistoryAsEntities() = %v, want *DecodeError", err)
	}
	if decodeErr.Target != "messages" {
		t.Errorf("Target = %q, want messages", decodeErr.Target)
	}
}

func TestTransportErrorHidesToken(t *testing.T) {
	api := newAPIServer(t, nil)
	client := newTestClient(t, api, "very-secret")
	api.server.Close()

	_, err := client.ListRooms(context.Background())
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if strings.Contains(err.Error(), "very-secret") || strings.Contains(err.Error(), "auth_token") {
		t.Errorf("error leaks the request URL: %v", err)
	}
	if !strings.Contains(err.Error(), "rooms/list") {
		t.Errorf("error does not name the endpoint: %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/list": {body: sampleRoomsXML}})
	client := newTestClient(t, api, "t")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListRooms(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListRooms(cancelled) = %v, want context.Canceled", err)
	}
}

func TestCancelInFlightRequest(t *testing.T) {
	arrived := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		close(arrived)
		<-request.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		BaseURL:    server.URL + "/v1",
		Token:      "t",
		HTTPClient: server.Client(),
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := client.ListRooms(ctx)
		result <- err
	}()

	testutil.RequireClosed(t, arrived, 5*time.Second, "request to reach the server")
	cancel()
	err = testutil.RequireReceive(t, result, 5*time.Second, "ListRooms to return after cancel")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ListRooms = %v, want context.Canceled", err)
	}
}

func TestLimiter(t *testing.T) {
	api := newAPIServer(t, map[string]response{"rooms/list": {body: "{}"}})
	client, err := NewClient(ClientConfig{
		BaseURL:    api.baseURL(),
		Token:      "t",
		HTTPClient: api.server.Client(),
		Limiter:    rate.NewLimiter(rate.Every(time.Hour), 1),
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if _, err := client.ListRooms(context.Background()); err != nil {
		t.Fatalf("first ListRooms: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.ListRooms(ctx); err == nil {
		t.Fatal("second ListRooms should fail waiting for the limiter")
	}
	if len(api.recorded()) != 1 {
		t.Errorf("got %d requests, want 1", len(api.recorded()))
	}
}

func TestConcurrentUse(t *testing.T) {
	api := newAPIServer(t, map[string]response{
		"rooms/message": {body: `{"status":"sent"}`},
		"rooms/list":    {body: sampleRoomsXML},
	})
	client := newTestClient(t, api, "t")
	client.SetRoomID(1)
	client.SetSender("bot")

	var group sync.WaitGroup
	for index := range 8 {
		group.Add(2)
		go func() {
			defer group.Done()
			client.SetNotify(index%2 == 0)
			client.SetFormat(FormatJSON)
			if err := client.SendMessage(context.Background(), testutil.UniqueID("hi")); err != nil {
				t.Errorf("SendMessage: %v", err)
			}
		}()
		go func() {
			defer group.Done()
			if _, err := client.ListRoomsAsEntities(context.Background()); err != nil {
				t.Errorf("ListRoomsAsEntities: %v", err)
			}
		}()
	}
	group.Wait()

	if client.Format() != FormatJSON {
		t.Error("entity calls leaked XML into the Client format")
	}
}
