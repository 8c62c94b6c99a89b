// Command codec encodes and decodes disaster event identifiers offline,
// without a running service. It reads raw event attributes as JSON from
// stdin for encoding, or takes an identifier argument for decoding.
//
// Usage:
//
//	echo '{"lat_code":"39904","lng_code":"116408",...}' | go run ./cmd/codec -encode
//	go run ./cmd/codec -decode 0399040116408202407300630001010302001
//	go run ./cmd/codec -dict disaster
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

func main() {
	encode := flag.Bool("encode", false, "read event JSON from stdin and print its identifier")
	decode := flag.String("decode", "", "identifier to decode")
	dict := flag.String("dict", "", "dictionary domain to list (source, carrier, disaster, indicator)")
	flat := flag.Bool("flat", false, "list dictionary domains as flattened code/name pairs")
	flag.Parse()

	if err := run(*encode, *decode, *dict, *flat); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(encode bool, decode, dict string, flat bool) error {
	registry := dictionary.NewRegistry()
	c := codec.New(registry)

	switch {
	case encode:
		return runEncode(c)
	case decode != "":
		return runDecode(c, decode)
	case dict != "":
		return runDict(registry, dict, flat)
	default:
		flag.Usage()
		return fmt.Errorf("one of -encode, -decode, or -dict is required")
	}
}

// eventInput mirrors the service's raw submission shape, with event_time as
// a string so both RFC 3339 and the 14-digit compact form are accepted.
type eventInput struct {
	LatCode                 string `json:"lat_code"`
	LngCode                 string `json:"lng_code"`
	EventTime               string `json:"event_time"`
	SourceCode              string `json:"source_code"`
	CarrierCode             string `json:"carrier_code"`
	DisasterCategoryCode    string `json:"disaster_category_code"`
	DisasterSubCategoryCode string `json:"disaster_sub_category_code"`
	IndicatorCode           string `json:"indicator_code"`
}

func runEncode(c *codec.Codec) error {
	var in eventInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		return fmt.Errorf("read event JSON: %w", err)
	}
	eventTime, err := codec.ParseEventTime(in.EventTime)
	if err != nil {
		return err
	}

	id, err := c.Encode(domain.DisasterEvent{
		LatCode:                 in.LatCode,
		LngCode:                 in.LngCode,
		EventTime:               eventTime,
		SourceCode:              in.SourceCode,
		CarrierCode:             in.CarrierCode,
		DisasterCategoryCode:    in.DisasterCategoryCode,
		DisasterSubCategoryCode: in.DisasterSubCategoryCode,
		IndicatorCode:           in.IndicatorCode,
	})
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runDecode(c *codec.Codec, id string) error {
	event, err := c.Decode(id)
	if err != nil {
		return err
	}
	return printJSON(struct {
		ID string `json:"id"`
		domain.DisasterEvent
	}{ID: id, DisasterEvent: event})
}

func runDict(registry *dictionary.Registry, name string, flat bool) error {
	if flat {
		entries, err := registry.ListFlat(name)
		if err != nil {
			return err
		}
		return printJSON(entries)
	}
	listing, err := registry.List(name)
	if err != nil {
		return err
	}
	return printJSON(listing)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
