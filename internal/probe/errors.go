package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/nao1215/footprint/internal/model"
)

// TransportError describes a request that failed before a response arrived.
type TransportError struct {
	Kind model.ErrorKind
	Err  error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassifyTransportError maps a request error to an ErrorKind.
//
// ctxErr is the error of the task context, if any. It is checked first because
// a cancelled batch and an elapsed per-task budget both surface as wrapped
// url.Error values whose cause depends on where the request was interrupted.
func ClassifyTransportError(ctxErr, err error) model.ErrorKind {
	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return model.ErrorTimeout
	case errors.Is(ctxErr, context.Canceled):
		return model.ErrorCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return model.ErrorTimeout
	case errors.Is(err, context.Canceled):
		return model.ErrorCancelled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.ErrorConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.ErrorConnection
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return model.ErrorConnection
	}

	return model.ErrorOther
}
