package pipeline

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the inputs of a run. It performs no I/O.
func Validate(credential string, rawURL string) error {
	if strings.TrimSpace(credential) == "" {
		return &Error{Kind: KindMissingCredential, Stage: StageValidating, Err: errEmptyCredential}
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return &Error{Kind: KindMissingURL, Stage: StageValidating, Err: errEmptyURL}
	}

	if err := checkURL(rawURL); err != nil {
		return &Error{Kind: KindMalformedURL, Stage: StageValidating, Err: err}
	}

	return nil
}

func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if !validHost(u.Hostname()) {
		return fmt.Errorf("invalid host %q", u.Host)
	}

	return nil
}

func validHost(host string) bool {
	if host == "" {
		return false
	}

	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}

	// A single trailing dot marks a fully qualified name.
	labels := strings.Split(strings.TrimSuffix(host, "."), ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}

	return true
}
