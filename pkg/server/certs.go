package server

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/acme/autocert"
)

// TLSResult holds the TLS config and optional autocert manager.
type TLSResult struct {
	Config      *tls.Config
	AutocertMgr *autocert.Manager
}

// SetupTLS obtains certificates from Let's Encrypt for the given
// domain, caching them under certDir.
func SetupTLS(domain, certDir string) (*TLSResult, error) {
	log.Printf("tls: using Let's Encrypt for domain %q", domain)
	cacheDir := filepath.Join(certDir, "autocert-cache")
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("creating autocert cache dir: %w", err)
	}
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(cacheDir),
	}
	return &TLSResult{Config: m.TLSConfig(), AutocertMgr: m}, nil
}
