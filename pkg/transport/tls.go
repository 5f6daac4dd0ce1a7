package transport

import "crypto/tls"

// NewClientTLSConfig builds the TLS configuration used to wrap every
// CASTV2 transport connection. Real Cast receivers present a self-signed
// or privately-issued certificate with no stable CA trust path and no
// usable DNS name, so verification is deliberately skipped and no SNI
// server name is sent (spec.md §6, §9). Security is provided entirely
// by proximity to the receiver, not by the TLS handshake.
func NewClientTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
	}
}
