// Package dictionary provides the static, versioned code tables behind
// disaster event identifiers: who reported (source), on what medium
// (carrier), what kind of damage (disaster category/sub-category), and
// which measure (indicator).
//
// The registry is built once at startup and never mutates, so lookups are
// safe for concurrent use without locking. Callers receive it by injection;
// there is no package-level instance.
package dictionary

import "fmt"

// Domain names recognized by the registry.
const (
	DomainSource    = "source"
	DomainCarrier   = "carrier"
	DomainDisaster  = "disaster"
	DomainIndicator = "indicator"
)

// Entry is one code/name pair within a domain.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Category is one top-level entry of a two-level domain together with its
// ordered sub-entries.
type Category struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Subs []Entry `json:"subs"`
}

// Listing is the shape returned by List: flat domains carry Entries,
// two-level domains carry Categories.
type Listing struct {
	Domain     string     `json:"domain"`
	Entries    []Entry    `json:"entries,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// UnknownDomainError reports a domain the registry does not recognize.
type UnknownDomainError struct {
	Domain string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("unknown dictionary domain %q", e.Domain)
}

// UnknownCodeError reports a code missing from a known domain. It is kept
// distinct from UnknownDomainError so the codec can name exactly which
// segment failed validation.
type UnknownCodeError struct {
	Domain string
	Code   string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown code %q in domain %q", e.Code, e.Domain)
}

// domainTable is the internal representation of one domain. Two-level
// domains keep both the ordered category slice (for listings) and a
// flattened code index (for lookups).
type domainTable struct {
	twoLevel   bool
	entries    []Entry
	categories []Category
	byCode     map[string]string // flattened code -> name
	byCategory map[string]string // category code -> name (two-level only)
}

// Registry is the immutable domain -> code -> name mapping.
type Registry struct {
	domains map[string]domainTable
}

// NewRegistry builds the registry from the compiled-in tables.
func NewRegistry() *Registry {
	return &Registry{domains: map[string]domainTable{
		DomainSource:    buildTwoLevel(sourceCategories),
		DomainCarrier:   buildFlat(carrierEntries),
		DomainDisaster:  buildTwoLevel(disasterCategories),
		DomainIndicator: buildFlat(indicatorEntries),
	}}
}

func buildFlat(entries []Entry) domainTable {
	byCode := make(map[string]string, len(entries))
	for _, e := range entries {
		byCode[e.Code] = e.Name
	}
	return domainTable{entries: entries, byCode: byCode}
}

func buildTwoLevel(categories []Category) domainTable {
	byCode := make(map[string]string)
	byCategory := make(map[string]string, len(categories))
	for _, c := range categories {
		byCategory[c.Code] = c.Name
		for _, s := range c.Subs {
			byCode[c.Code+s.Code] = s.Name
		}
	}
	return domainTable{
		twoLevel:   true,
		categories: categories,
		byCode:     byCode,
		byCategory: byCategory,
	}
}

// Domains returns the recognized domain names in a stable order.
func (r *Registry) Domains() []string {
	return []string{DomainSource, DomainCarrier, DomainDisaster, DomainIndicator}
}

// Lookup resolves a code to its display name. For two-level domains the
// code is the concatenated category+sub-category form (e.g. source "101").
func (r *Registry) Lookup(domain, code string) (string, error) {
	t, ok := r.domains[domain]
	if !ok {
		return "", &UnknownDomainError{Domain: domain}
	}
	name, ok := t.byCode[code]
	if !ok {
		return "", &UnknownCodeError{Domain: domain, Code: code}
	}
	return name, nil
}

// LookupCategory resolves a top-level category code of a two-level domain.
func (r *Registry) LookupCategory(domain, code string) (string, error) {
	t, ok := r.domains[domain]
	if !ok || !t.twoLevel {
		return "", &UnknownDomainError{Domain: domain}
	}
	name, ok := t.byCategory[code]
	if !ok {
		return "", &UnknownCodeError{Domain: domain, Code: code}
	}
	return name, nil
}

// List returns the full ordered contents of a domain, preserving the
// two-level structure where the domain has one.
func (r *Registry) List(domain string) (Listing, error) {
	t, ok := r.domains[domain]
	if !ok {
		return Listing{}, &UnknownDomainError{Domain: domain}
	}
	if t.twoLevel {
		return Listing{Domain: domain, Categories: t.categories}, nil
	}
	return Listing{Domain: domain, Entries: t.entries}, nil
}

// ListFlat returns a domain as ordered {code, name} pairs. Two-level
// domains are flattened by concatenating category and sub-category codes.
func (r *Registry) ListFlat(domain string) ([]Entry, error) {
	t, ok := r.domains[domain]
	if !ok {
		return nil, &UnknownDomainError{Domain: domain}
	}
	if !t.twoLevel {
		return t.entries, nil
	}
	var flat []Entry
	for _, c := range t.categories {
		for _, s := range c.Subs {
			flat = append(flat, Entry{Code: c.Code + s.Code, Name: s.Name})
		}
	}
	return flat, nil
}
