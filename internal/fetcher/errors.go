package fetcher

import (
	"errors"
	"fmt"
)

// TransportError indicates the DAM server couldn't be reached or the
// transfer broke off. It marks the whole remote side as unavailable, not
// just the single asset.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
