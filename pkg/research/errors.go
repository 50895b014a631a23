package research

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is matched by every *InvalidRequestError.
var ErrInvalidRequest = errors.New("invalid research request")

// InvalidRequestError is the only error Engine.Research returns.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid research request: %s %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// SearchError is returned by search gateways (quota, network, auth).
type SearchError struct {
	Provider string
	Query    string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search %q failed: %v", e.Provider, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// FetchError is returned by scrapers (timeout, non-200, non-text, parse failure).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LLMError is returned by LLM gateways and by response parsing.
type LLMError struct {
	Mode  Mode
	Model string
	Err   error
}

func (e *LLMError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm %s (%s): %v", e.Mode, e.Model, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Mode, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }

// ErrMalformedResponse marks model output that could not be parsed.
var ErrMalformedResponse = errors.New("malformed model response")

// ErrNonText marks content the scraper cannot turn into text.
var ErrNonText = errors.New("non-text content")
