package main

import (
	"context"
	"time"
)

// newShutdownContext gives in-flight requests a short grace period after
// the signal context is already cancelled.
func newShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
