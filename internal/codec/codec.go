// Package codec encodes disaster events into fixed-length identifiers and
// decodes identifiers back into attribute tuples.
//
// An identifier is the concatenation of fixed-width segments with no
// separators; positions are the only delimiter:
//
//	segment                      width  form
//	lat_code                     6      signed int, latitude x 1000
//	lng_code                     7      signed int, longitude x 1000
//	event_time                   14     yyyyMMddHHmmss, UTC
//	source_code                  3      digits (category + sub-category)
//	carrier_code                 1      digit
//	disaster_category_code       1      digit
//	disaster_sub_category_code   2      digits
//	indicator_code               3      digits
//
// Total length is 37. Coordinate segments are zero-padded; negative values
// spend one pad position on the sign, so the declared ranges
// (lat in [-90000, 90000], lng in [-180000, 180000]) always fit.
//
// Encode and Decode are pure functions of the attribute tuple and the
// injected dictionary registry; they never touch persisted state.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

// Segment widths. These are wire constants: changing any of them
// invalidates every previously issued identifier.
const (
	latWidth         = 6
	lngWidth         = 7
	timeWidth        = 14
	sourceWidth      = 3
	carrierWidth     = 1
	categoryWidth    = 1
	subCategoryWidth = 2
	indicatorWidth   = 3

	// IDLength is the total identifier length.
	IDLength = latWidth + lngWidth + timeWidth + sourceWidth +
		carrierWidth + categoryWidth + subCategoryWidth + indicatorWidth
)

// Coordinate codes are degrees scaled by 1000.
const (
	latScaledMax = 90000
	lngScaledMax = 180000
)

// timeLayout is the compact event time segment format, always UTC.
const timeLayout = "20060102150405"

// InvalidCoordinateError reports a lat/lng code that is not a well-formed
// fixed-point coordinate.
type InvalidCoordinateError struct {
	Field  string
	Code   string
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %s=%q: %s", e.Field, e.Code, e.Reason)
}

// InvalidSegmentError reports a dictionary-backed segment that failed
// validation, naming the offending field and code.
type InvalidSegmentError struct {
	Field string
	Code  string
	Err   error
}

func (e *InvalidSegmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid segment %s=%q: %v", e.Field, e.Code, e.Err)
	}
	return fmt.Sprintf("invalid segment %s=%q", e.Field, e.Code)
}

func (e *InvalidSegmentError) Unwrap() error { return e.Err }

// MalformedIdentifierError reports an identifier whose shape is wrong
// before any dictionary validation applies.
type MalformedIdentifierError struct {
	ID     string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.ID, e.Reason)
}

// Codec converts between DisasterEvent tuples and identifiers, consulting
// the registry to validate codes and resolve display names.
type Codec struct {
	registry *dictionary.Registry
}

// New creates a Codec backed by the given registry.
func New(registry *dictionary.Registry) *Codec {
	return &Codec{registry: registry}
}

// Encode produces the fixed-length identifier for an event. It fails with
// InvalidCoordinateError for malformed lat/lng codes and with
// InvalidSegmentError naming the first field whose code does not resolve
// against the registry.
func (c *Codec) Encode(event domain.DisasterEvent) (string, error) {
	lat, err := parseCoordinate("lat_code", event.LatCode, latScaledMax)
	if err != nil {
		return "", err
	}
	lng, err := parseCoordinate("lng_code", event.LngCode, lngScaledMax)
	if err != nil {
		return "", err
	}
	if event.EventTime.IsZero() {
		return "", &InvalidSegmentError{Field: "event_time", Code: "", Err: fmt.Errorf("event time is required")}
	}

	if err := c.validateCodes(event); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(IDLength)
	fmt.Fprintf(&b, "%0*d", latWidth, lat)
	fmt.Fprintf(&b, "%0*d", lngWidth, lng)
	b.WriteString(event.EventTime.UTC().Format(timeLayout))
	b.WriteString(event.SourceCode)
	b.WriteString(event.CarrierCode)
	b.WriteString(event.DisasterCategoryCode)
	b.WriteString(event.DisasterSubCategoryCode)
	b.WriteString(event.IndicatorCode)
	return b.String(), nil
}

// Decode splits an identifier into its segments, validates every
// dictionary-backed code, and enriches the tuple with display names.
// A well-formed identifier can still fail with InvalidSegmentError if the
// dictionary no longer carries one of its codes; that is surfaced rather
// than returning an empty name.
func (c *Codec) Decode(id string) (domain.DisasterEvent, error) {
	if len(id) != IDLength {
		return domain.DisasterEvent{}, &MalformedIdentifierError{
			ID:     id,
			Reason: fmt.Sprintf("length %d, want %d", len(id), IDLength),
		}
	}

	pos := 0
	next := func(width int) string {
		seg := id[pos : pos+width]
		pos += width
		return seg
	}
	latSeg := next(latWidth)
	lngSeg := next(lngWidth)
	timeSeg := next(timeWidth)
	sourceCode := next(sourceWidth)
	carrierCode := next(carrierWidth)
	categoryCode := next(categoryWidth)
	subCategoryCode := next(subCategoryWidth)
	indicatorCode := next(indicatorWidth)

	lat, err := decodeCoordinate(id, "lat_code", latSeg, latScaledMax)
	if err != nil {
		return domain.DisasterEvent{}, err
	}
	lng, err := decodeCoordinate(id, "lng_code", lngSeg, lngScaledMax)
	if err != nil {
		return domain.DisasterEvent{}, err
	}
	eventTime, err := time.Parse(timeLayout, timeSeg)
	if err != nil {
		return domain.DisasterEvent{}, &MalformedIdentifierError{ID: id, Reason: "bad time segment " + timeSeg}
	}

	event := domain.DisasterEvent{
		LatCode:                 strconv.Itoa(lat),
		LngCode:                 strconv.Itoa(lng),
		EventTime:               eventTime,
		SourceCode:              sourceCode,
		CarrierCode:             carrierCode,
		DisasterCategoryCode:    categoryCode,
		DisasterSubCategoryCode: subCategoryCode,
		IndicatorCode:           indicatorCode,
	}

	if err := c.validateCodes(event); err != nil {
		return domain.DisasterEvent{}, err
	}

	names, err := c.resolveNames(event)
	if err != nil {
		return domain.DisasterEvent{}, err
	}
	event.Names = names
	return event, nil
}

// validateCodes checks every dictionary-backed segment, reporting the first
// failure with its field name.
func (c *Codec) validateCodes(event domain.DisasterEvent) error {
	checks := []struct {
		field  string
		code   string
		width  int
		lookup func(code string) error
	}{
		{"source_code", event.SourceCode, sourceWidth, func(code string) error {
			_, err := c.registry.Lookup(dictionary.DomainSource, code)
			return err
		}},
		{"carrier_code", event.CarrierCode, carrierWidth, func(code string) error {
			_, err := c.registry.Lookup(dictionary.DomainCarrier, code)
			return err
		}},
		{"disaster_category_code", event.DisasterCategoryCode, categoryWidth, func(code string) error {
			_, err := c.registry.LookupCategory(dictionary.DomainDisaster, code)
			return err
		}},
		{"disaster_sub_category_code", event.DisasterSubCategoryCode, subCategoryWidth, func(code string) error {
			_, err := c.registry.Lookup(dictionary.DomainDisaster, event.DisasterCategoryCode+code)
			return err
		}},
		{"indicator_code", event.IndicatorCode, indicatorWidth, func(code string) error {
			_, err := c.registry.Lookup(dictionary.DomainIndicator, code)
			return err
		}},
	}

	for _, check := range checks {
		if len(check.code) != check.width || !isDigits(check.code) {
			return &InvalidSegmentError{
				Field: check.field,
				Code:  check.code,
				Err:   fmt.Errorf("want %d digits", check.width),
			}
		}
		if err := check.lookup(check.code); err != nil {
			return &InvalidSegmentError{Field: check.field, Code: check.code, Err: err}
		}
	}
	return nil
}

func (c *Codec) resolveNames(event domain.DisasterEvent) (*domain.EventNames, error) {
	source, err := c.registry.Lookup(dictionary.DomainSource, event.SourceCode)
	if err != nil {
		return nil, &InvalidSegmentError{Field: "source_code", Code: event.SourceCode, Err: err}
	}
	carrier, err := c.registry.Lookup(dictionary.DomainCarrier, event.CarrierCode)
	if err != nil {
		return nil, &InvalidSegmentError{Field: "carrier_code", Code: event.CarrierCode, Err: err}
	}
	category, err := c.registry.LookupCategory(dictionary.DomainDisaster, event.DisasterCategoryCode)
	if err != nil {
		return nil, &InvalidSegmentError{Field: "disaster_category_code", Code: event.DisasterCategoryCode, Err: err}
	}
	subCategory, err := c.registry.Lookup(dictionary.DomainDisaster, event.DisasterCategoryCode+event.DisasterSubCategoryCode)
	if err != nil {
		return nil, &InvalidSegmentError{Field: "disaster_sub_category_code", Code: event.DisasterSubCategoryCode, Err: err}
	}
	indicator, err := c.registry.Lookup(dictionary.DomainIndicator, event.IndicatorCode)
	if err != nil {
		return nil, &InvalidSegmentError{Field: "indicator_code", Code: event.IndicatorCode, Err: err}
	}
	return &domain.EventNames{
		Source:              source,
		Carrier:             carrier,
		DisasterCategory:    category,
		DisasterSubCategory: subCategory,
		Indicator:           indicator,
	}, nil
}

// ParseEventTime accepts either an RFC 3339 timestamp or a 14-digit compact
// time code and returns the event time in UTC.
func ParseEventTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) == timeWidth && isDigits(value) {
		t, err := time.Parse(timeLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse compact event time %q: %w", value, err)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event time %q: %w", value, err)
	}
	return t.UTC(), nil
}

// parseCoordinate validates an encode-side coordinate code: a signed
// integer string whose absolute value fits the scaled range.
func parseCoordinate(field, code string, scaledMax int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, &InvalidCoordinateError{Field: field, Code: code, Reason: "not a signed integer"}
	}
	if v < -scaledMax || v > scaledMax {
		return 0, &InvalidCoordinateError{
			Field:  field,
			Code:   code,
			Reason: fmt.Sprintf("out of range [-%d, %d]", scaledMax, scaledMax),
		}
	}
	return v, nil
}

// decodeCoordinate parses a coordinate segment of an identifier. Shape
// problems inside a correctly sized identifier are malformed-identifier
// errors, not coordinate validation errors.
func decodeCoordinate(id, field, segment string, scaledMax int) (int, error) {
	v, err := strconv.Atoi(segment)
	if err != nil {
		return 0, &MalformedIdentifierError{ID: id, Reason: "bad " + field + " segment " + segment}
	}
	if v < -scaledMax || v > scaledMax {
		return 0, &MalformedIdentifierError{ID: id, Reason: field + " out of range"}
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
