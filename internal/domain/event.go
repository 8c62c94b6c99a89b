package domain

import "time"

// EventNames holds the display names resolved from the dictionary registry
// for an event's coded fields. Populated by decode; never encoded.
type EventNames struct {
	Source              string `json:"source,omitempty"`
	Carrier             string `json:"carrier,omitempty"`
	DisasterCategory    string `json:"disaster_category,omitempty"`
	DisasterSubCategory string `json:"disaster_sub_category,omitempty"`
	Indicator           string `json:"indicator,omitempty"`
}

// DisasterEvent is the canonical attribute tuple behind one identifier.
// The *_code fields are the raw dictionary codes; LatCode and LngCode are
// signed fixed-point coordinate codes (degrees x 1000).
type DisasterEvent struct {
	LatCode                 string    `json:"lat_code"`
	LngCode                 string    `json:"lng_code"`
	EventTime               time.Time `json:"event_time"`
	SourceCode              string    `json:"source_code"`
	CarrierCode             string    `json:"carrier_code"`
	DisasterCategoryCode    string    `json:"disaster_category_code"`
	DisasterSubCategoryCode string    `json:"disaster_sub_category_code"`
	IndicatorCode           string    `json:"indicator_code"`

	Value      *float64 `json:"value,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	MediaPath  string   `json:"media_path,omitempty"`
	RawPayload string   `json:"raw_payload,omitempty"`

	Names *EventNames `json:"names,omitempty"`
}
