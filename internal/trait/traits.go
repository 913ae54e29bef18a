package trait

import (
	"fmt"

	"codec-generator/internal/common"
)

// Namespace qualifies a wire element with a prefix and URI.
type Namespace struct {
	Prefix string
	URI    string
}

// TimestampFormat selects the wire representation of a timestamp leaf.
type TimestampFormat int

const (
	TimestampUnspecified TimestampFormat = iota
	TimestampDateTime                    // RFC 3339, e.g. "2014-04-29T18:30:38Z"
	TimestampEpochSeconds                // seconds since the Unix epoch, fractional allowed
	TimestampHTTPDate                    // RFC 7231 IMF-fixdate
)

// String returns a human-readable representation of the TimestampFormat.
func (f TimestampFormat) String() string {
	switch f {
	case TimestampDateTime:
		return "date-time"
	case TimestampEpochSeconds:
		return "epoch-seconds"
	case TimestampHTTPDate:
		return "http-date"
	case TimestampUnspecified:
		return "unspecified"
	default:
		return common.UnknownStr
	}
}

// ParseTimestampFormat parses the wire-format name used in schema documents.
func ParseTimestampFormat(s string) (TimestampFormat, error) {
	switch s {
	case "date-time":
		return TimestampDateTime, nil
	case "epoch-seconds":
		return TimestampEpochSeconds, nil
	case "http-date":
		return TimestampHTTPDate, nil
	default:
		return TimestampUnspecified, fmt.Errorf("unknown timestamp format %q", s)
	}
}

// Traits holds the wire-level overrides attached to one occurrence of a
// shape (or, on a shape definition, its type-level defaults). Nil pointer
// fields mean "not set here, fall through".
type Traits struct {
	// KeyName overrides the map key element name.
	KeyName *string
	// ValueName overrides the map value element name or the list element
	// name, whichever the occurrence is.
	ValueName *string
	// EntryName overrides the per-entry wrapper element name.
	EntryName *string
	// Flattened removes the wrapper layer; entries appear directly under
	// the occurrence's own slot.
	Flattened *bool
	// Namespace qualifies the occurrence's wrapper element.
	Namespace *Namespace
	// TimestampFormat applies to timestamp leaves at this position.
	TimestampFormat TimestampFormat
}

// IsZero returns true if no trait is set.
func (t Traits) IsZero() bool {
	return t.KeyName == nil && t.ValueName == nil && t.EntryName == nil &&
		t.Flattened == nil && t.Namespace == nil && t.TimestampFormat == TimestampUnspecified
}

// Binding is the protocol binding configuration: the naming and wrapping
// defaults one target protocol supplies. Exactly one binding is active
// per generation run.
type Binding struct {
	// Name identifies the binding, e.g. "rest-xml".
	Name string
	// KeyName is the default map key element name.
	KeyName string
	// ValueName is the default map value element name.
	ValueName string
	// ElementName is the default list element name.
	ElementName string
	// EntryName is the default per-entry wrapper element name.
	EntryName string
	// TimestampFormat is the default leaf timestamp format. May be
	// unspecified, in which case a timestamp leaf without an override is
	// a resolution gap.
	TimestampFormat TimestampFormat
	// Namespace is the default namespace applied to wrapper elements.
	// Nil means unqualified by default.
	Namespace *Namespace
}

// RestXML returns the XML-style binding with the conventional defaults:
// key/value for maps, member for list elements, entry for wrappers, and
// RFC 3339 timestamps.
func RestXML() Binding {
	return Binding{
		Name:            "rest-xml",
		KeyName:         "key",
		ValueName:       "value",
		ElementName:     "member",
		EntryName:       "entry",
		TimestampFormat: TimestampDateTime,
	}
}
