// Package builder is the route-to-document translation engine: it normalizes
// route descriptors, derives per-operation parameter lists and assembles the
// final Swagger document.
package builder

import (
	"github.com/griffnb/route-swag/internal/diag"
	"github.com/griffnb/route-swag/internal/domain"
)

// Payload encoding kinds.
const (
	PayloadTypeJSON = "json"
	PayloadTypeForm = "form"
)

// Media types set by payload auto-detection.
const (
	MediaTypeFormURLEncoded = "application/x-www-form-urlencoded"
	MediaTypeMultipartForm  = "multipart/form-data"
)

// Settings configures one translation. The zero value is usable; defaults
// are applied by New.
type Settings struct {
	// BasePath is stripped from route paths before they are emitted. The
	// root base path strips nothing.
	BasePath string `json:"basePath,omitempty"`

	// PathReplacements are rewrite rules applied to route paths and group
	// labels.
	PathReplacements []domain.PathReplacement `json:"pathReplacements,omitempty"`

	// PayloadType is the default payload encoding kind, "json" or "form".
	// A route-level payloadType overrides it.
	PayloadType string `json:"payloadType,omitempty"`

	// Consumes and Produces are global overrides; when set they win over
	// auto-detected values for every route without its own declaration.
	Consumes []string `json:"consumes,omitempty"`
	Produces []string `json:"produces,omitempty"`

	// AcceptToProduce derives an operation's produces list from an Accept
	// header enum, removing the header parameter.
	AcceptToProduce bool `json:"acceptToProduce,omitempty"`

	// PathPrefixSize is the number of leading path segments used as the
	// fallback group label.
	PathPrefixSize int `json:"pathPrefixSize,omitempty"`

	// Debug mirrors diagnostics as they are recorded. Optional.
	Debug diag.Debugger `json:"-"`
}

// withDefaults returns a copy with zero values replaced by defaults.
func (s *Settings) withDefaults() *Settings {
	out := &Settings{}
	if s != nil {
		*out = *s
	}
	if out.BasePath == "" {
		out.BasePath = "/"
	}
	if out.PayloadType == "" {
		out.PayloadType = PayloadTypeJSON
	}
	if out.PathPrefixSize < 1 {
		out.PathPrefixSize = 1
	}
	return out
}
