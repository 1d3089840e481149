package sync

import (
	"context"
	"errors"
)

// IsCancellation reports whether err stems from context cancellation or expiry.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
