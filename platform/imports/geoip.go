package imports

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// UnknownCountry is recorded when a connection's country cannot be resolved
const UnknownCountry = "Unknown"

// IPCountryFinder provides IP address to country lookups
type IPCountryFinder interface {
	Country(ip string) (string, error)
}

// MaxMindCountryFinder uses MaxMind database files to find IP->country mappings
type MaxMindCountryFinder struct {
	db *geoip2.Reader
}

// NewMaxMindCountryFinder returns a MaxMindCountryFinder that uses the provided .mmdb file
func NewMaxMindCountryFinder(mmdbFile string) (*MaxMindCountryFinder, error) {
	db, err := geoip2.Open(mmdbFile)
	if err != nil {
		return nil, err
	}
	return &MaxMindCountryFinder{db: db}, nil
}

// Country returns the ISO country code for the provided IP
func (m *MaxMindCountryFinder) Country(ipStr string) (string, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "", fmt.Errorf("Failed to parse IP address %s", ipStr)
	}

	record, err := m.db.Country(ip)
	if err != nil {
		return "", err
	}
	if record.Country.IsoCode == "" {
		return "", fmt.Errorf("Failed to find country for %s", ipStr)
	}
	return record.Country.IsoCode, nil
}
