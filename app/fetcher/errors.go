package fetcher

import "fmt"

// RetrievalError is a non-quota failure of a single batch call. It is fatal
// to the run: blind retries of transport failures would mask persistent
// outages.
type RetrievalError struct {
	Batch int
	Size  int
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("batch %d (%d ids) failed: %v", e.Batch, e.Size, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
