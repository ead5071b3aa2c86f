// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/bureau-foundation/hipchat/lib/codec"
)

// Output is an embeddable struct that adds --json and --cbor output modes
// to a command's parameter struct.
//
//	type roomsParams struct {
//	    cli.Output
//	    Entities bool `flag:"entities" desc:"print a table of rooms"`
//	}
//
//	// In Run:
//	if done, err := params.Emit(stdout, rooms); done {
//	    return err
//	}
//	// ... text formatting ...
type Output struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
	OutputCBOR bool `json:"-" flag:"cbor" desc:"output as deterministic CBOR (diagnostic notation on a terminal)"`
}

// Structured reports whether --json or --cbor was given.
func (o *Output) Structured() bool {
	return o.OutputJSON || o.OutputCBOR
}

// Validate rejects --json together with --cbor.
func (o *Output) Validate() error {
	if o.OutputJSON && o.OutputCBOR {
		return errors.New("--json and --cbor are mutually exclusive")
	}
	return nil
}

// Emit writes result to w in the selected structured format. Returns
// (true, nil) on success, (true, err) on failure, or (false, nil) when
// neither flag is set and the caller should proceed with text formatting.
//
// Nil slices are normalized to empty slices first, so output is [] rather
// than null.
func (o *Output) Emit(w io.Writer, result any) (bool, error) {
	if err := o.Validate(); err != nil {
		return true, err
	}
	switch {
	case o.OutputJSON:
		return true, WriteJSON(w, normalizeNilSlice(result))
	case o.OutputCBOR:
		return true, WriteCBOR(w, normalizeNilSlice(result))
	default:
		return false, nil
	}
}

// WriteJSON marshals value as indented JSON and writes it to w.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// WriteCBOR encodes value as CBOR and writes it to w. Binary output on a
// terminal is unreadable, so a terminal gets diagnostic notation instead.
func WriteCBOR(w io.Writer, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding CBOR: %w", err)
	}
	if IsTerminal(w) {
		notation, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("formatting CBOR: %w", err)
		}
		_, err = fmt.Fprintln(w, notation)
		return err
	}
	_, err = w.Write(data)
	return err
}

// normalizeNilSlice returns an empty slice of the same type if value is a
// nil slice. Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
