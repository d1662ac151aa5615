// Utilities for lifting API credentials out of a browser "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLRe    = regexp.MustCompile(`(https?://[^\s'"]+)`)
)

// forwardedHeaders lists the request headers worth replaying against the wiki API.
//
// Browser noise such as sec-fetch-* or accept-language is dropped.
var forwardedHeaders = map[string]bool{
	"authorization":    true,
	"x-csrf-token":     true,
	"x-requested-with": true,
}

// CurlCredentials are the credentials found in a cURL command.
type CurlCredentials struct {
	URL     string
	Token   string
	Cookie  string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts credentials.
func ParseCurlFile(filepath string) (*CurlCredentials, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts the session cookie, bearer token and forwarded headers.
func ParseCurlCommand(data []byte) (*CurlCredentials, error) {
	cmd := string(data)
	cmd = strings.ReplaceAll(cmd, "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	creds := &CurlCredentials{Headers: map[string]string{}}

	if m := curlURLRe.FindStringSubmatch(cmd); m != nil {
		creds.URL = m[1]
	}

	for _, m := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		name, value, ok := strings.Cut(firstNonEmpty(m[1], m[2]), ":")
		if !ok {
			continue
		}
		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		value = strings.TrimSpace(value)

		switch lower := strings.ToLower(name); {
		case lower == "cookie":
			if creds.Cookie == "" {
				creds.Cookie = value
			}
		case lower == "authorization":
			if token, found := strings.CutPrefix(value, "Bearer "); found {
				creds.Token = strings.TrimSpace(token)
			} else {
				creds.Headers[name] = value
			}
		case forwardedHeaders[lower]:
			creds.Headers[name] = value
		}
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); m != nil {
		creds.Cookie = firstNonEmpty(m[1], m[2])
	}

	if creds.Token == "" && creds.Cookie == "" && len(creds.Headers) == 0 {
		return nil, fmt.Errorf("%w: no credentials found in curl command", ErrMissingCredentials)
	}

	return creds, nil
}

// Apply copies the parsed credentials into an [APIConfig], keeping existing headers not present in the command.
func (c *CurlCredentials) Apply(cfg *APIConfig) {
	if c.Token != "" {
		cfg.Token = c.Token
	}
	if c.Cookie != "" {
		cfg.Cookie = c.Cookie
	}
	if len(c.Headers) > 0 && cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	for k, v := range c.Headers {
		cfg.Headers[k] = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
