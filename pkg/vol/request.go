package vol

import (
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
)

// RequestStatus is the completion state of an asynchronous request.
type RequestStatus uint8

const (
	RequestInProgress RequestStatus = iota
	RequestSucceeded
	RequestFailed
	RequestCanceled
)

var requestStatusString = map[RequestStatus]string{
	RequestInProgress: "in progress",
	RequestSucceeded:  "succeeded",
	RequestFailed:     "failed",
	RequestCanceled:   "canceled",
}

func (rs RequestStatus) String() string {
	if str, ok := requestStatusString[rs]; ok {
		return str
	}
	return "unknown"
}

// Request is the asynchronous completion slot threaded through every
// dispatch call. A connector supporting async fills Token; the core then
// stamps the request with an id and the owning class. Ownership of
// polling and cancelling belongs to the caller.
type Request struct {
	ID    uuid.UUID
	Token any
	cls   *Class
}

// Pending reports whether a connector produced an async token.
func (req *Request) Pending() bool {
	return req != nil && req.Token != nil
}

// Class returns the connector class owning the request token.
func (req *Request) Class() *Class {
	if req == nil {
		return nil
	}
	return req.cls
}

// adopt stamps a freshly produced token with its owning class. Called by
// every dispatch trampoline after a successful connector callback.
func (req *Request) adopt(cls *Class) {
	if req == nil || req.Token == nil || req.cls != nil {
		return
	}
	req.ID = uuid.New()
	req.cls = cls
}

func (req *Request) connector() (RequestConnector, error) {
	if req == nil || req.Token == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no pending request")
	}
	if req.cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "request has no owning class")
	}
	return req.cls.request()
}

// RequestWait blocks until the request completes or the timeout expires,
// forwarding to the owning connector without any synchronization of its
// own.
func RequestWait(req *Request, timeout time.Duration) (RequestStatus, error) {
	conn, err := req.connector()
	if err != nil {
		return RequestFailed, err
	}
	return conn.RequestWait(req.Token, timeout)
}

// RequestTest polls the request once.
func RequestTest(req *Request) (RequestStatus, error) {
	conn, err := req.connector()
	if err != nil {
		return RequestFailed, err
	}
	return conn.RequestWait(req.Token, 0)
}

// RequestCancel asks the owning connector to cancel the request.
// Cancellation semantics are entirely connector defined.
func RequestCancel(req *Request) (RequestStatus, error) {
	conn, err := req.connector()
	if err != nil {
		return RequestFailed, err
	}
	return conn.RequestCancel(req.Token)
}

// RequestFree releases the connector private request state.
func RequestFree(req *Request) error {
	conn, err := req.connector()
	if err != nil {
		return err
	}
	if err := conn.RequestFree(req.Token); err != nil {
		return errors.Wrapf(err, "cannot free request %s", req.ID)
	}
	req.Token = nil
	req.cls = nil
	return nil
}
