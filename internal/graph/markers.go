package graph

import (
	"strings"

	"archatlas/internal/domain"
)

// Marker matching is deliberately case-insensitive: diagrams authored by
// hand mix "TLS", "tls" and "Tls", and a silent rule miss on casing is a
// correctness bug, not a style choice.

var encryptionMarkers = []string{"tls", "mtls", "ssl", "https", "encrypted"}
var authMarkers = []string{"iam", "auth", "jwt", "oauth", "mtls"}

var insecureProtocols = map[string]bool{
	"http":   true,
	"ftp":    true,
	"telnet": true,
	"smb":    true,
	"any":    true,
}

func containsAny(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// HasEncryptionMarker scans free text (edge labels, protocol strings) for
// an encryption indicator.
func HasEncryptionMarker(text string) bool {
	return containsAny(text, encryptionMarkers)
}

// HasAuthMarker scans free text for an authentication indicator.
func HasAuthMarker(text string) bool {
	return containsAny(text, authMarkers)
}

// ConnectionEncrypted checks the connection's encryption field, protocol
// and label for encryption markers.
func ConnectionEncrypted(conn *domain.Connection) bool {
	return HasEncryptionMarker(conn.Encryption) ||
		HasEncryptionMarker(conn.Protocol) ||
		HasEncryptionMarker(conn.Label)
}

// ConnectionAuthenticated reports whether the connection declares any
// authentication. An empty or "None" auth field counts as unauthenticated.
func ConnectionAuthenticated(conn *domain.Connection) bool {
	auth := strings.TrimSpace(conn.Auth)
	if auth == "" || strings.EqualFold(auth, "none") {
		return HasAuthMarker(conn.Label)
	}
	return true
}

// InsecureProtocol reports whether the protocol is in the known-insecure
// set (HTTP, FTP, Telnet, SMB, ANY).
func InsecureProtocol(protocol string) bool {
	return insecureProtocols[strings.ToLower(strings.TrimSpace(protocol))]
}

// NameContains is a case-insensitive substring test used by label-based
// heuristics.
func NameContains(name string, needles ...string) bool {
	lower := strings.ToLower(name)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// FeatureSet lowers a component's declared feature tags into a set for
// membership tests.
func FeatureSet(c *domain.Component) map[string]bool {
	set := make(map[string]bool, len(c.Metadata.Features))
	for _, f := range c.Metadata.Features {
		set[strings.ToLower(strings.TrimSpace(f))] = true
	}
	return set
}
