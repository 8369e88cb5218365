// Package security builds the TLS configuration of the HTTP listener.
//
//	tls:
//	  cert_file: /etc/authd/tls/cert.pem
//	  key_file: /etc/authd/tls/key.pem
//	  client_ca_file: /etc/authd/tls/clients.pem   # optional, enables mTLS
//	  min_version: "1.3"
//
// Without cert_file the listener serves plain HTTP (with h2c).
package security
