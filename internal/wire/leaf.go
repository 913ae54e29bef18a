package wire

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"codec-generator/internal/shape"
	"codec-generator/internal/trait"
)

const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ParseLeaf converts wire text into the runtime value for a leaf kind.
// Timestamp leaves require a resolved format.
func ParseLeaf(text string, kind shape.LeafKind, format trait.TimestampFormat) (any, error) {
	switch kind {
	case shape.LeafString:
		return text, nil

	case shape.LeafBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("parsing boolean %q: %w", text, err)
		}

		return v, nil

	case shape.LeafInteger:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing integer %q: %w", text, err)
		}

		return int32(v), nil

	case shape.LeafLong:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing long %q: %w", text, err)
		}

		return v, nil

	case shape.LeafDouble:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing double %q: %w", text, err)
		}

		return v, nil

	case shape.LeafBlob:
		v, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decoding blob: %w", err)
		}

		return v, nil

	case shape.LeafTimestamp:
		return parseTimestamp(text, format)

	default:
		return nil, fmt.Errorf("unsupported leaf kind %s", kind)
	}
}

// FormatLeaf converts a runtime value into wire text for a leaf kind. It
// is the inverse of ParseLeaf.
func FormatLeaf(value any, kind shape.LeafKind, format trait.TimestampFormat) (string, error) {
	switch kind {
	case shape.LeafString:
		v, ok := value.(string)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return v, nil

	case shape.LeafBoolean:
		v, ok := value.(bool)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return strconv.FormatBool(v), nil

	case shape.LeafInteger:
		v, ok := value.(int32)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return strconv.FormatInt(int64(v), 10), nil

	case shape.LeafLong:
		v, ok := value.(int64)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return strconv.FormatInt(v, 10), nil

	case shape.LeafDouble:
		v, ok := value.(float64)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return strconv.FormatFloat(v, 'g', -1, 64), nil

	case shape.LeafBlob:
		v, ok := value.([]byte)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return base64.StdEncoding.EncodeToString(v), nil

	case shape.LeafTimestamp:
		v, ok := value.(time.Time)
		if !ok {
			return "", leafTypeError(kind, value)
		}

		return formatTimestamp(v, format)

	default:
		return "", fmt.Errorf("unsupported leaf kind %s", kind)
	}
}

func parseTimestamp(text string, format trait.TimestampFormat) (time.Time, error) {
	switch format {
	case trait.TimestampDateTime:
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date-time %q: %w", text, err)
		}

		return t, nil

	case trait.TimestampEpochSeconds:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing epoch-seconds %q: %w", text, err)
		}

		sec, frac := math.Modf(f)

		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil

	case trait.TimestampHTTPDate:
		t, err := time.Parse(httpDateLayout, text)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing http-date %q: %w", text, err)
		}

		return t, nil

	default:
		return time.Time{}, fmt.Errorf("timestamp without resolved format")
	}
}

func formatTimestamp(t time.Time, format trait.TimestampFormat) (string, error) {
	switch format {
	case trait.TimestampDateTime:
		return t.UTC().Format(time.RFC3339), nil
	case trait.TimestampEpochSeconds:
		return strconv.FormatInt(t.Unix(), 10), nil
	case trait.TimestampHTTPDate:
		return t.UTC().Format(httpDateLayout), nil
	default:
		return "", fmt.Errorf("timestamp without resolved format")
	}
}

func leafTypeError(kind shape.LeafKind, value any) error {
	return fmt.Errorf("leaf kind %s cannot encode value of type %T", kind, value)
}
