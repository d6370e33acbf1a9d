package utils

import (
	"net"
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// CityLookup is satisfied by *geoip2.Reader.
type CityLookup interface {
	City(ipAddress net.IP) (*geoip2.City, error)
}

// GetIPAddress tries different methods to get the real IP address
func GetIPAddress(r *http.Request) string {
	// Take the first public address from X-Forwarded-For
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			trimmedIP := strings.TrimSpace(ip)
			parsedIP := net.ParseIP(trimmedIP)
			if parsedIP != nil && !isPrivateIP(parsedIP) {
				return trimmedIP
			}
		}
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		if parsedIP := net.ParseIP(xRealIP); parsedIP != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

// LookupCountry resolves the English country name for ipAddress. It returns
// nil when geo lookup is disabled, the address is not public or the database
// has no entry for it.
func LookupCountry(lookup CityLookup, ipAddress string) *string {
	if lookup == nil {
		return nil
	}
	parsedIP := net.ParseIP(ipAddress)
	if parsedIP == nil || isPrivateIP(parsedIP) {
		return nil
	}

	record, err := lookup.City(parsedIP)
	if err != nil || record == nil {
		return nil
	}

	if name, ok := record.Country.Names["en"]; ok && name != "" {
		return &name
	}
	return nil
}
