// Package diag collects non-fatal diagnostics raised while a route set is
// translated. Anomalies in per-route input never abort the translation; they
// are recorded here and the output degrades to something renderable.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityWarning marks a construct that was represented approximately,
	// for example an opaque validator replaced by a placeholder model.
	SeverityWarning Severity = "warning"

	// SeverityError marks a construct that could not be represented at all
	// and was dropped from the document.
	SeverityError Severity = "error"
)

// Diagnostic is one recorded issue: a severity, the tags locating it
// (location, route path, method) and a human-readable message.
type Diagnostic struct {
	Severity Severity
	Tags     []string
	Message  string
}

// String formats the diagnostic for console output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, strings.Join(d.Tags, ","), d.Message)
}

// Debugger is the interface that wraps the basic Printf method. It matches
// the standard library log.Logger.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Collector accumulates diagnostics for a single translation call. It is not
// safe for concurrent use; each translation gets its own collector.
type Collector struct {
	entries []Diagnostic
	debug   Debugger
}

// NewCollector creates an empty collector. debug may be nil; when set, every
// diagnostic is mirrored to it as it is recorded.
func NewCollector(debug Debugger) *Collector {
	return &Collector{debug: debug}
}

// Warn records a warning-severity diagnostic.
func (c *Collector) Warn(tags []string, format string, v ...interface{}) {
	c.add(SeverityWarning, tags, format, v...)
}

// Error records an error-severity diagnostic.
func (c *Collector) Error(tags []string, format string, v ...interface{}) {
	c.add(SeverityError, tags, format, v...)
}

func (c *Collector) add(sev Severity, tags []string, format string, v ...interface{}) {
	d := Diagnostic{
		Severity: sev,
		Tags:     tags,
		Message:  fmt.Sprintf(format, v...),
	}
	c.entries = append(c.entries, d)
	if c.debug != nil {
		c.debug.Printf("%s", d)
	}
}

// Entries returns the recorded diagnostics in the order they were raised.
func (c *Collector) Entries() []Diagnostic {
	return c.entries
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.entries {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics matching the given severity.
func (c *Collector) Filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.entries {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
