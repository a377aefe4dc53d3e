package api

import (
	"net/http"
	"strings"
)

// originPolicy matches request origins against api.cors_origins. Entries
// are exact origins, "*" for any origin, or a single-wildcard pattern such
// as "https://*.example.com". Matching is case-insensitive.
type originPolicy struct {
	any      bool
	exact    map[string]bool
	patterns [][2]string // prefix, suffix
}

func newOriginPolicy(origins []string) *originPolicy {
	p := &originPolicy{exact: make(map[string]bool)}
	if len(origins) == 0 {
		p.any = true
		return p
	}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch i := strings.IndexByte(o, '*'); {
		case o == "":
		case o == "*":
			p.any = true
		case i >= 0:
			p.patterns = append(p.patterns, [2]string{o[:i], o[i+1:]})
		default:
			p.exact[o] = true
		}
	}
	return p
}

// Allowed reports whether origin may call the API. It has the signature of
// cors.Options.AllowOriginFunc.
func (p *originPolicy) Allowed(_ *http.Request, origin string) bool {
	if p.any {
		return true
	}
	origin = strings.ToLower(origin)
	if p.exact[origin] {
		return true
	}
	for _, w := range p.patterns {
		if len(origin) >= len(w[0])+len(w[1]) && strings.HasPrefix(origin, w[0]) && strings.HasSuffix(origin, w[1]) {
			return true
		}
	}
	return false
}

// checkOrigin is the websocket upgrader's origin check. Requests without an
// Origin header come from non-browser clients and are accepted.
func (p *originPolicy) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return p.Allowed(r, origin)
}
