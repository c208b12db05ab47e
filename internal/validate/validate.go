// Package validate rejects malformed or unsafe operator input before any
// network or file I/O happens.
package validate

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Provider identifies an external API whose key format we can check.
type Provider string

const (
	ProviderFirecrawl Provider = "firecrawl"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

const minKeyLength = 10

// blockedHosts are never scraped; pointing the pipeline at the local
// machine is either a mistake or an SSRF attempt.
var blockedHosts = map[string]bool{
	"localhost": true,
	"0.0.0.0":   true,
}

// URL checks that raw is a well-formed public http(s) URL and returns the
// normalized form. A missing scheme defaults to https.
func URL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("validate: URL is empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		if strings.Contains(raw, "://") {
			return "", eris.Errorf("validate: unsupported URL scheme in %q", raw)
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "validate: parse URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", eris.Errorf("validate: unsupported URL scheme %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", eris.New("validate: URL has no host")
	}
	if blockedHosts[host] {
		return "", eris.Errorf("validate: host %q is not allowed", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
			return "", eris.Errorf("validate: address %q is not allowed", host)
		}
	} else if !strings.Contains(host, ".") {
		return "", eris.Errorf("validate: host %q is not a public hostname", host)
	}

	return u.String(), nil
}

// APIKey checks the basic shape of a provider key without ever logging it.
func APIKey(provider Provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return eris.Errorf("validate: %s API key is empty", provider)
	}
	if len(key) < minKeyLength {
		return eris.Errorf("validate: %s API key too short (minimum %d characters)", provider, minKeyLength)
	}
	if strings.ContainsAny(key, " \t\n") {
		return eris.Errorf("validate: %s API key contains whitespace", provider)
	}

	switch provider {
	case ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return eris.New("validate: anthropic API key must start with sk-ant-")
		}
	case ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") {
			return eris.New("validate: openai API key must start with sk-")
		}
	case ProviderFirecrawl:
		if !strings.HasPrefix(key, "fc-") {
			return eris.New("validate: firecrawl API key must start with fc-")
		}
	default:
		return eris.Errorf("validate: unknown provider %q", provider)
	}
	return nil
}

// supportedDocExts are the document types the knowledge base can extract
// text from natively.
var supportedDocExts = map[string]bool{
	".txt": true,
	".md":  true,
}

// DocumentFilename checks that the uploaded file has a supported extension
// and no path traversal components.
func DocumentFilename(filename string) error {
	if filename == "" {
		return eris.New("validate: filename is empty")
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return eris.Errorf("validate: filename %q contains path separators", filename)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedDocExts[ext] {
		return eris.Errorf("validate: unsupported file type %q (supported: .txt, .md)", ext)
	}
	return nil
}
