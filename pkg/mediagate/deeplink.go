package mediagate

import (
	"fmt"
	"net/url"
)

// startParam is the launch-URI query parameter carrying the media code.
const startParam = "start"

// BuildDeepLink produces a platform launch URI carrying the code verbatim
// as its start argument. Query parameters already present on the base are
// kept.
func BuildDeepLink(base, code string) string {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Sprintf("%s?%s=%s", base, startParam, url.QueryEscape(code))
	}
	q := u.Query()
	q.Set(startParam, code)
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseDeepLink extracts the code from a launch URI. The code is taken
// verbatim; no transformation happens in either direction. An empty code
// (a plain launch with no payload) is not an error.
func ParseDeepLink(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid deep link: %w", err)
	}
	return u.Query().Get(startParam), nil
}
