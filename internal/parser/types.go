package parser

import "errors"

// ErrMalformed is matched by every line-level extraction failure.
var ErrMalformed = errors.New("malformed line")

// Reason classifies why a line could not be parsed.
type Reason string

const (
	// ReasonCardinality means more than one key or value was found on a line.
	ReasonCardinality Reason = "line should contain exactly one key and one value"
	// ReasonNoKey means no quoted key precedes the `=` token.
	ReasonNoKey Reason = "no key found"
	// ReasonNoValue means no quoted value sits between `=` and the terminating `;`.
	ReasonNoValue Reason = "no value found"
)

// Pair is one key/value entry extracted from a line.
type Pair struct {
	// Key is the localization identifier, without surrounding quotes.
	Key string
	// Value is the localized text, escapes kept verbatim.
	Value string
}

// MalformedError reports a line that does not have the `"key" = "value";` shape.
type MalformedError struct {
	Reason Reason
}

func (e *MalformedError) Error() string { return string(e.Reason) }

func (e *MalformedError) Unwrap() error { return ErrMalformed }
