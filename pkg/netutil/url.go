package netutil

import (
	"net"
	"net/url"

	"github.com/pkg/errors"
)

// ValidateHttpUrl validates a URL for an HTTP scheme. The host must be an IP
// address or a valid domain name; no network lookups are performed.
func ValidateHttpUrl(value string, requireSecureConnection bool) (*url.URL, error) {
	parsed, err := url.Parse(value)
	if err != nil {
		return nil, err
	}

	if requireSecureConnection && parsed.Scheme != "https" {
		return nil, errors.New("url scheme must be https")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("url scheme must be http or https")
	}

	hostname := parsed.Hostname()
	if len(hostname) == 0 {
		return nil, errors.New("host component missing")
	}

	if net.ParseIP(hostname) == nil {
		if err := ValidateDomainName(hostname); err != nil {
			return nil, errors.Wrap(err, "host is not a valid domain name")
		}
	}

	return parsed, nil
}
