package kit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IPRateLimiter admits at most limit requests per client within any sliding
// window. Clients are keyed by the first X-Forwarded-For address, falling
// back to the connection's host.
type IPRateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
	swept  time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait, ok := l.Allow(clientKey(r)); !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			WriteError(w, r, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow records a request from key. When the client is over its limit the
// request is not recorded and wait is the time until the oldest hit leaves
// the window.
func (l *IPRateLimiter) Allow(key string) (wait time.Duration, ok bool) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now, cutoff)

	ts := dropBefore(l.hits[key], cutoff)
	if len(ts) >= l.limit {
		l.hits[key] = ts
		return ts[0].Sub(cutoff), false
	}
	l.hits[key] = append(ts, now)
	return 0, true
}

// sweep forgets idle clients at most once per window.
func (l *IPRateLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.swept) < l.window {
		return
	}
	l.swept = now
	for k, ts := range l.hits {
		if ts = dropBefore(ts, cutoff); len(ts) == 0 {
			delete(l.hits, k)
		} else {
			l.hits[k] = ts
		}
	}
}

// dropBefore keeps the hits after cutoff. ts is ordered oldest first.
func dropBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
