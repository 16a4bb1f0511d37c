// Package xerrors implements the error taxonomy every failure in this
// module classifies into: ConfigError, TransportError, ProtocolError, and
// Aborted. Only Aborted is locally recoverable; the others are fatal.
package xerrors

import "fmt"

// ConfigError signals an unsupported parameter combination or a missing or
// malformed factor file.
type ConfigError struct {
	Msg   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError builds a ConfigError, optionally wrapping a cause.
func NewConfigError(msg string, cause error) error {
	return &ConfigError{Msg: msg, Cause: cause}
}

// TransportError signals a bind failure, connection failure, stream open
// failure, or serialization failure on send.
type TransportError struct {
	Msg   string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("transport error: %s", e.Msg)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func NewTransportError(msg string, cause error) error {
	return &TransportError{Msg: msg, Cause: cause}
}

// ProtocolError signals a ZKPoPK verification failure after the retry
// budget is exhausted, a MAC check failure, a truncer cross-check failure,
// an unexpected message kind, or a length mismatch. Never retried: a
// protocol error is cryptographically indistinguishable from active
// corruption.
type ProtocolError struct {
	Msg   string
	Cause error
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("protocol error: %s", e.Msg)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

func NewProtocolError(msg string, cause error) error {
	return &ProtocolError{Msg: msg, Cause: cause}
}

// Aborted signals a prover rejection-sampling abort within ZKPoPK. The
// caller retries with a fresh challenge, up to a bounded number of
// repetitions.
type Aborted struct {
	Msg string
}

func (e *Aborted) Error() string {
	return fmt.Sprintf("aborted: %s", e.Msg)
}

func NewAborted(msg string) error {
	return &Aborted{Msg: msg}
}
