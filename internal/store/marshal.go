package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/pdbrecords/internal/harness"
)

// encodeJSON converts v to JSON TEXT with HTML escaping disabled.
// Strings are stored exactly as recorded, without NFC normalization, so a
// trace reads back identical to the one the harness produced.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// marshalStrings converts a string list to JSON TEXT. nil is stored as [].
func marshalStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := encodeJSON(list)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return data, nil
}

// unmarshalStrings parses JSON TEXT into a non-nil string list.
func unmarshalStrings(data string) ([]string, error) {
	list := []string{}
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// marshalArgs converts step arguments to JSON TEXT, or NULL when the step
// took none.
func marshalArgs(args map[string]any) (sql.NullString, error) {
	if args == nil {
		return sql.NullString{}, nil
	}
	data, err := encodeJSON(args)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal args: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, nil
}

// unmarshalArgs parses step arguments. Every harness argument is a string.
func unmarshalArgs(data sql.NullString) (map[string]any, error) {
	if !data.Valid {
		return nil, nil
	}
	var raw map[string]string
	if err := json.Unmarshal([]byte(data.String), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	args := make(map[string]any, len(raw))
	for k, v := range raw {
		args[k] = v
	}
	return args, nil
}

// marshalResult converts a step result to JSON TEXT, or NULL when the step
// returned nothing.
func marshalResult(result any) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := encodeJSON(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal result: %w", err)
	}
	return sql.NullString{String: data, Valid: true}, nil
}

// unmarshalResult parses a step result into the Go type op returns:
// int for count, []string for records and string for the rest.
func unmarshalResult(op string, data sql.NullString) (any, error) {
	if !data.Valid {
		return nil, nil
	}

	var (
		result any
		err    error
	)
	switch op {
	case harness.OpCount:
		var n int
		err = json.Unmarshal([]byte(data.String), &n)
		result = n
	case harness.OpRecords:
		var list []string
		list, err = unmarshalStrings(data.String)
		result = list
	default:
		var s string
		err = json.Unmarshal([]byte(data.String), &s)
		result = s
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s result: %w", op, err)
	}
	return result, nil
}
