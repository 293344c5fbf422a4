// Package clientip resolves the caller's address behind edge proxies and
// derives the key the rate limiter buckets requests by.
package clientip

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
)

type contextKey struct{}

// Info is the resolved client address.
type Info struct {
	// Primary is the most trusted single address, used for logging.
	Primary string

	// Key joins every distinct address seen on the request, sorted.
	// The TCP peer is always part of it, so spoofing a header yields a new
	// bucket rather than someone else's.
	Key string
}

// proxyHeaders lists the headers that carry the client address, most trusted
// first. X-Forwarded-For is handled separately since only its first hop counts.
var proxyHeaders = []string{
	"Fly-Client-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
}

// Middleware resolves Info, rewrites r.RemoteAddr to Info.Primary and stores
// Info in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := Resolve(r)
		r.RemoteAddr = info.Primary
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, info)))
	})
}

// FromRequest returns the Info stored by Middleware, resolving it on the fly
// when the middleware did not run.
func FromRequest(r *http.Request) Info {
	if info, ok := r.Context().Value(contextKey{}).(Info); ok {
		return info
	}
	return Resolve(r)
}

// Resolve computes Info from the request headers and peer address.
// Header values that do not parse as an IP are ignored.
func Resolve(r *http.Request) Info {
	peer := hostOnly(r.RemoteAddr)
	seen := make([]string, 0, 4)
	if peer != "" {
		seen = append(seen, peer)
	}

	var primary string
	consider := func(raw string) {
		addr, ok := parseIP(raw)
		if !ok {
			return
		}
		if !slices.Contains(seen, addr) {
			seen = append(seen, addr)
		}
		if primary == "" {
			primary = addr
		}
	}

	for _, h := range proxyHeaders {
		consider(r.Header.Get(h))
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		consider(first)
	}

	if primary == "" {
		primary = peer
	}
	slices.Sort(seen)
	return Info{Primary: primary, Key: strings.Join(seen, "|")}
}

func parseIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// hostOnly strips the port from addr; addresses without a port are returned
// without brackets.
func hostOnly(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
