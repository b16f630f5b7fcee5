package graph

import (
	"testing"

	"archatlas/internal/domain"
)

func TestConnectionEncrypted(t *testing.T) {
	tests := []struct {
		name string
		conn domain.Connection
		want bool
	}{
		{"TLS in encryption field", domain.Connection{Encryption: "TLS 1.2+"}, true},
		{"lowercase tls", domain.Connection{Encryption: "tls"}, true},
		{"HTTPS protocol", domain.Connection{Protocol: "HTTPS"}, true},
		{"mTLS in label", domain.Connection{Label: "Service mesh mTLS"}, true},
		{"plain HTTP", domain.Connection{Protocol: "HTTP"}, false},
		{"empty connection", domain.Connection{}, false},
		{"mixed case label", domain.Connection{Label: "Encrypted channel"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConnectionEncrypted(&tt.conn); got != tt.want {
				t.Errorf("ConnectionEncrypted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConnectionAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		conn domain.Connection
		want bool
	}{
		{"IAM auth field", domain.Connection{Auth: "IAM"}, true},
		{"auth None falls back to label", domain.Connection{Auth: "None"}, false},
		{"auth none with auth marker in label", domain.Connection{Auth: "none", Label: "OAuth callback"}, true},
		{"empty auth, plain label", domain.Connection{Label: "traffic"}, false},
		{"any non-empty auth counts", domain.Connection{Auth: "basic"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConnectionAuthenticated(&tt.conn); got != tt.want {
				t.Errorf("ConnectionAuthenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsecureProtocol(t *testing.T) {
	for _, p := range []string{"HTTP", "http", "FTP", "telnet", "SMB", "ANY", " ftp "} {
		if !InsecureProtocol(p) {
			t.Errorf("InsecureProtocol(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"HTTPS", "SSH", "PostgreSQL", ""} {
		if InsecureProtocol(p) {
			t.Errorf("InsecureProtocol(%q) = true, want false", p)
		}
	}
}

func TestFeatureSet(t *testing.T) {
	c := domain.Component{Metadata: domain.Metadata{Features: []string{"IAM Auth", " cmek ", "encryption"}}}
	set := FeatureSet(&c)
	for _, want := range []string{"iam auth", "cmek", "encryption"} {
		if !set[want] {
			t.Errorf("FeatureSet missing %q", want)
		}
	}
}
