// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the HipChat v1 API root.
const DefaultBaseURL = "https://api.hipchat.com/v1"

// HistoryRecent is the date value that asks for the most recent messages
// instead of a specific day.
const HistoryRecent = "recent"

const historyDateLayout = "2006-01-02"

// Request describes one API call. Builders produce it; the transport
// executes it.
type Request struct {
	Method string
	// URL is absolute and fully escaped. It contains the auth token, so
	// never log it.
	URL string
	// Endpoint is the API path relative to the base URL (e.g.,
	// "rooms/list"), safe for logs and error messages.
	Endpoint string
	// Message is the body actually sent by send-message, after
	// truncation. Empty for other endpoints.
	Message string
}

// queryParam keeps parameters in a fixed order; url.Values would sort them.
type queryParam struct {
	key   string
	value string
}

// escapeQueryValue percent-escapes a parameter value. Reserved characters
// inside the value (&, =, ?, #, +, %) are escaped so they cannot break the
// query structure, and spaces become %20 rather than +.
func escapeQueryValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// buildURL joins baseURL, endpoint, and the escaped parameters. Only
// values are escaped; the structural ?, &, and = are written verbatim.
func buildURL(baseURL, endpoint string, params []queryParam) string {
	var builder strings.Builder
	builder.WriteString(baseURL)
	builder.WriteString("/")
	builder.WriteString(endpoint)
	for index, param := range params {
		if index == 0 {
			builder.WriteByte('?')
		} else {
			builder.WriteByte('&')
		}
		builder.WriteString(param.key)
		builder.WriteByte('=')
		builder.WriteString(escapeQueryValue(param.value))
	}
	return builder.String()
}

func notifyValue(notify bool) string {
	if notify {
		return "1"
	}
	return "0"
}

// sendParams are the resolved arguments of a send-message call. Message
// has already been validated and truncated.
type sendParams struct {
	roomID        int
	sender        string
	message       string
	notify        bool
	color         Color
	messageFormat MessageFormat
}

// buildSendMessage formats a rooms/message request.
func buildSendMessage(baseURL string, s settings, params sendParams) Request {
	const endpoint = "rooms/message"
	query := []queryParam{
		{"auth_token", s.token},
		{"room_id", strconv.Itoa(params.roomID)},
		{"format", s.format.String()},
		{"notify", notifyValue(params.notify)},
		{"from", params.sender},
		{"message", params.message},
	}
	if params.color != "" {
		query = append(query, queryParam{"color", string(params.color)})
	}
	if params.messageFormat != "" {
		query = append(query, queryParam{"message_format", string(params.messageFormat)})
	}
	return Request{
		Method:   http.MethodPost,
		URL:      buildURL(baseURL, endpoint, query),
		Endpoint: endpoint,
		Message:  params.message,
	}
}

// buildListRooms formats a rooms/list request.
func buildListRooms(baseURL string, s settings) Request {
	const endpoint = "rooms/list"
	return Request{
		Method: http.MethodGet,
		URL: buildURL(baseURL, endpoint, []queryParam{
			{"format", s.format.String()},
			{"auth_token", s.token},
		}),
		Endpoint: endpoint,
	}
}

// buildRoomHistory formats a rooms/history request. date is either
// "YYYY-MM-DD" or HistoryRecent.
func buildRoomHistory(baseURL string, s settings, date string) Request {
	const endpoint = "rooms/history"
	query := []queryParam{
		{"room_id", strconv.Itoa(s.roomID)},
		{"date", date},
		{"format", s.format.String()},
		{"auth_token", s.token},
	}
	if s.timezone != "" {
		query = append(query, queryParam{"timezone", s.timezone})
	}
	return Request{
		Method:   http.MethodGet,
		URL:      buildURL(baseURL, endpoint, query),
		Endpoint: endpoint,
	}
}

// historyDate renders the date parameter: nil means HistoryRecent.
func historyDate(date *time.Time) string {
	if date == nil {
		return HistoryRecent
	}
	return date.Format(historyDateLayout)
}
