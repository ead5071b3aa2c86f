// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("hipchat: validation failed")

// ValidationKind identifies which precondition a *ValidationError reports.
type ValidationKind int

const (
	// MissingToken: no auth token configured.
	MissingToken ValidationKind = iota + 1
	// MissingRoom: the room id is still UnsetRoomID.
	MissingRoom
	// MissingSender: the sender name is empty.
	MissingSender
	// EmptyMessage: the message body is empty.
	EmptyMessage
	// SenderTooLong: the sender exceeds MaxSenderLength and auto-truncate
	// is disabled.
	SenderTooLong
	// MessageTooLong: the message exceeds MaxMessageLength and
	// auto-truncate is disabled.
	MessageTooLong
	// InvalidOption: a send option such as color or message format is
	// not one the API accepts.
	InvalidOption
)

func (k ValidationKind) String() string {
	switch k {
	case MissingToken:
		return "missing-token"
	case MissingRoom:
		return "missing-room"
	case MissingSender:
		return "missing-sender"
	case EmptyMessage:
		return "empty-message"
	case SenderTooLong:
		return "sender-too-long"
	case MessageTooLong:
		return "message-too-long"
	case InvalidOption:
		return "invalid-option"
	default:
		return fmt.Sprintf("validation-kind(%d)", int(k))
	}
}

// ValidationError reports a configuration or input problem detected before
// any request was sent. Callers distinguish the cases with errors.As:
//
//	var validationErr *hipchat.ValidationError
//	if errors.As(err, &validationErr) && validationErr.Kind == hipchat.MissingRoom {
//	    ...
//	}
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return "hipchat: " + e.Message
}

// Is makes errors.Is(err, ErrValidation) true for every kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError checks whether err is a *ValidationError of the given kind.
func IsValidationError(err error, kind ValidationKind) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Kind == kind
	}
	return false
}

func validationError(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// APIError is a non-2xx response from the HipChat API.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Detail is the raw response body, verbatim.
	Detail string
	// Type is the error type from a structured error body (e.g.,
	// "Unauthorized"). Empty if the body was not structured.
	Type string
	// Message is the human-readable description from a structured error
	// body. Empty if the body was not structured.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hipchat: %s (%d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("hipchat: HTTP %d: %s", e.StatusCode, strings.TrimSpace(e.Detail))
}

// IsAPIError checks whether err is an *APIError with the given HTTP status.
func IsAPIError(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// newAPIError builds an *APIError from a failed response. Detail always
// carries the raw body. HipChat's error document is parsed best-effort in
// either format:
//
//	{"error":{"code":401,"type":"Unauthorized","message":"Auth token not found."}}
//	<error><code>401</code><type>Unauthorized</type><message>...</message></error>
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Detail: string(body)}

	trimmed := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var envelope struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
	case strings.HasPrefix(trimmed, "<"):
		var document struct {
			XMLName xml.Name `xml:"error"`
			Type    string   `xml:"type"`
			Message string   `xml:"message"`
		}
		if xml.Unmarshal(body, &document) == nil {
			apiErr.Type = document.Type
			apiErr.Message = document.Message
		}
	}

	return apiErr
}

// DecodeError reports a response body that did not match the expected
// document, or a field whose value could not be converted.
type DecodeError struct {
	// Target is the expected document root ("rooms", "messages"). Empty
	// for standalone field conversions.
	Target string
	// Field locates the offending element, e.g. "room[2].last_active".
	Field string
	// Value is the raw text of the offending element, if any.
	Value string
	// Body is the complete response body.
	Body string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	var builder strings.Builder
	builder.WriteString("hipchat: decoding ")
	if e.Target != "" {
		builder.WriteString(e.Target)
		builder.WriteString(" ")
	}
	builder.WriteString("response")
	if e.Field != "" {
		fmt.Fprintf(&builder, ": field %s", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&builder, " (value %q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&builder, ": %v", e.Err)
	}
	return builder.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
