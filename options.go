package msgbus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dshills/msgbus/dispatch"
)

// FaultPolicy decides what a faulting handler does to the rest of the
// snapshot during one emit.
type FaultPolicy int

const (
	// FaultIsolate attempts every handler in the snapshot and returns
	// the collected faults joined after the full pass. One broken
	// subscriber cannot suppress delivery to the rest. This is the
	// default.
	FaultIsolate FaultPolicy = iota

	// FaultAbort stops dispatching at the first fault and returns it.
	// Entries later in the snapshot are not attempted.
	FaultAbort
)

// String returns a human-readable policy name.
func (p FaultPolicy) String() string {
	switch p {
	case FaultIsolate:
		return "isolate"
	case FaultAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the bus.
type busConfig struct {
	// logger receives handler fault reports. Discards by default so the
	// library is silent unless the host wires a logger in.
	logger logrus.FieldLogger

	// faultPolicy controls isolate-vs-abort dispatch on faults.
	faultPolicy FaultPolicy

	// panicHandler is an optional extra callback on handler panics,
	// invoked in addition to the logger.
	panicHandler dispatch.PanicHandler
}

// defaultBusConfig returns the default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		logger:      discardLogger(),
		faultPolicy: FaultIsolate,
	}
}

// WithLogger sets the logger used to report handler faults and panics.
// Typical development setups pass logrus.StandardLogger(); the default
// discards everything and the caller observes faults only through the
// error returned by emit.
func WithLogger(l logrus.FieldLogger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFaultPolicy sets the fault policy for dispatch.
func WithFaultPolicy(p FaultPolicy) BusOption {
	return func(c *busConfig) {
		c.faultPolicy = p
	}
}

// WithPanicHandler sets an additional callback invoked when a handler
// panics, receiving the message, panic value and stack trace.
func WithPanicHandler(h dispatch.PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
