package splunk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strconv"
)

// ErrMalformedPayload is returned when a webhook body is not a JSON object.
var ErrMalformedPayload = errors.New("malformed payload")

// Field names as they appear in the Splunk webhook body.
const (
	FieldSearchName  = "search_name"
	FieldResultsLink = "results_link"
	FieldHost        = "host"
	FieldSource      = "source"
	FieldRaw         = "_raw"

	fieldResult = "result"
)

// Field is an optional payload value. Present distinguishes an absent key
// from one that was sent as an empty string.
type Field struct {
	Value   string
	Present bool
}

// Or returns the field value, or "Missing <name>" when the field is absent.
func (f Field) Or(name string) string {
	if !f.Present {
		return Placeholder(name)
	}
	return f.Value
}

// Placeholder is the text rendered in place of an absent field.
func Placeholder(name string) string {
	return "Missing " + name
}

// Payload is the subset of a Splunk alert webhook the formatter reads.
type Payload struct {
	SearchName  Field
	ResultsLink Field
	Host        Field
	Source      Field
	Raw         Field

	// Search metadata; logged, never rendered.
	SID   string
	App   string
	Owner string
}

// Parse decodes a Splunk webhook body. Any body that is not a single JSON
// object yields an error wrapping ErrMalformedPayload.
func Parse(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Payload{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedPayload)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Payload{}, fmt.Errorf("%w: body is %s, want object", ErrMalformedPayload, jsonKind(v))
	}
	return fromObject(obj), nil
}

// ParseBody decodes a webhook body according to its Content-Type. The body
// is JSON for both application/json and application/x-www-form-urlencoded;
// for the form type a body that is not JSON is retried as form fields with
// the JSON object in the "payload" field.
func ParseBody(contentType string, body []byte) (Payload, error) {
	p, err := Parse(body)
	if err == nil {
		return p, nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/x-www-form-urlencoded" {
		return Payload{}, err
	}
	form, ferr := url.ParseQuery(string(body))
	if ferr != nil || !form.Has("payload") {
		return Payload{}, err
	}
	return Parse([]byte(form.Get("payload")))
}

func fromObject(obj map[string]any) Payload {
	result, _ := obj[fieldResult].(map[string]any)

	p := Payload{
		SearchName:  lookup(obj, FieldSearchName),
		ResultsLink: lookup(obj, FieldResultsLink),
		Host:        lookupResult(result, obj, FieldHost),
		Source:      lookupResult(result, obj, FieldSource),
		Raw:         lookupResult(result, obj, FieldRaw),
	}
	p.SID = lookup(obj, "sid").Value
	p.App = lookup(obj, "app").Value
	p.Owner = lookup(obj, "owner").Value
	return p
}

func lookupResult(result, obj map[string]any, key string) Field {
	if f := lookup(result, key); f.Present {
		return f
	}
	return lookup(obj, key)
}

// lookup reads key from obj as text. JSON null counts as absent; numbers
// and booleans keep their JSON spelling; nested values render as compact JSON.
func lookup(obj map[string]any, key string) Field {
	v, ok := obj[key]
	if !ok || v == nil {
		return Field{}
	}
	switch t := v.(type) {
	case string:
		return Field{Value: t, Present: true}
	case json.Number:
		return Field{Value: t.String(), Present: true}
	case bool:
		return Field{Value: strconv.FormatBool(t), Present: true}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Field{}
		}
		return Field{Value: string(b), Present: true}
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
