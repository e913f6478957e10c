package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/satishgoda/watchtower/internal/services"
)

// ParseFrame coerces a loosely typed frame value into an int. Upstream metadata
// is weakly validated, so numbers may arrive as floats or as text. Strings use
// their leading integer part ("42", " 42 ", "42.9" and "42px" all give 42).
func ParseFrame(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float32:
		return floatFrame(float64(v))
	case float64:
		return floatFrame(v)
	case json.Number:
		return ParseFrame(v.String())
	case string:
		return stringFrame(v)
	case nil:
		return 0, services.Wrap(services.ErrMalformedData, "", "parse frame", "frame is null", nil)
	default:
		return 0, services.Wrap(services.ErrMalformedData, "", "parse frame", fmt.Sprintf("unsupported frame type %T", value), nil)
	}
}

func floatFrame(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, services.Wrap(services.ErrMalformedData, "", "parse frame", "frame is not finite", nil)
	}
	return int(v), nil
}

func stringFrame(raw string) (int, error) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, services.Wrap(services.ErrMalformedData, "", "parse frame", fmt.Sprintf("%q is not a number", raw), nil)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, services.Wrap(services.ErrMalformedData, "", "parse frame", fmt.Sprintf("%q is out of range", raw), err)
	}
	return n, nil
}

// FlexInt decodes JSON numbers and numeric strings into an int.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	n, err := ParseFrame(raw)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// FlexFloat decodes JSON numbers and numeric strings into a float64.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(trimmed); err == nil {
		trimmed = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return services.Wrap(services.ErrMalformedData, "", "parse number", fmt.Sprintf("%s is not a number", string(data)), err)
	}
	*f = FlexFloat(v)
	return nil
}

// Ratio is a display aspect ratio. Upstream sends either a number (1.85) or a
// label ("16:9"); both are kept as text.
type Ratio string

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(trimmed); err == nil {
		*r = Ratio(unquoted)
		return nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return services.Wrap(services.ErrMalformedData, "", "parse ratio", trimmed, err)
	}
	*r = Ratio(trimmed)
	return nil
}
