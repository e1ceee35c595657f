package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// Country is the subset of a GeoIP record surfaced in health output and logs.
type Country struct {
	ISOCode string `json:"isoCode"`
	Name    string `json:"name,omitempty"`
}

// CountryResolver resolves countries from IP addresses.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
	Country(ip string) (Country, error)
	Close() error
}

// Resolver provides country lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at path. An empty path yields a nil
// resolver and no error; callers then rely on edge headers alone.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Country returns the ISO code and English name for ip.
func (r *Resolver) Country(ip string) (Country, error) {
	if r == nil || r.reader == nil {
		return Country{}, ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return Country{}, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return Country{}, fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil || record.Country.IsoCode == "" {
		return Country{}, nil
	}
	return Country{ISOCode: record.Country.IsoCode, Name: record.Country.Names["en"]}, nil
}

// CountryCode returns the ISO country code for the provided IP.
func (r *Resolver) CountryCode(ip string) (string, error) {
	c, err := r.Country(ip)
	if err != nil {
		return "", err
	}
	return c.ISOCode, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

// Lookup adapts a resolver to the plain function shape used by middleware.
// A nil resolver yields a nil lookup.
func Lookup(r CountryResolver) func(ip string) (string, error) {
	if r == nil {
		return nil
	}
	return r.CountryCode
}
