// Package domain models disaster event reports and their persisted records.
//
// # Identifiers
//
// Every report is named by a single fixed-length numeric identifier built
// from fixed-width segments (see the codec package):
//
//	[lat_code 6][lng_code 7][event_time 14][source 3][carrier 1][category 1][sub_category 2][indicator 3]
//
// Coordinates are stored as signed fixed-point codes: the WGS-84 value
// multiplied by 1000 and rendered as a signed integer string, so Beijing
// (39.904, 116.408) becomes lat_code "39904", lng_code "116408". The time
// segment is yyyyMMddHHmmss in UTC.
//
// Dictionary-backed codes (source, carrier, disaster category/sub-category,
// indicator) resolve to display names through the dictionary registry at
// decode time; names are never part of the identifier itself.
//
// # Record lifecycle
//
// A DisasterRecord moves forward through three states and never back:
//
//	active -> archived -> purged
//
// Ingestion creates active records, the retention manager archives records
// older than their category's retention window and purges archived records
// after a grace period. Purged records are physically removed.
package domain
