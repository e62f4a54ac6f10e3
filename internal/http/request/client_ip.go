// internal/http/request/client_ip.go
package request

import (
	"net"
	"net/http"
	"strings"
)

// FindClientIP returns the first valid address from X-Forwarded-For or
// X-Real-Ip, then the remote address.
func FindClientIP(r *http.Request) string {
	for _, header := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		for _, candidate := range strings.Split(value, ",") {
			candidate = strings.TrimSpace(candidate)
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
