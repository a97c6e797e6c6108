package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger logs one line per request with its status and duration.
func Logger(logger *log.Logger, clients ClientResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"client", clients.Resolve(r),
			)
		})
	}
}

// CORS allows cross-origin GET requests from origins. An empty list allows any origin.
func CORS(origins []string) Middleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

const (
	limiterSweepInterval = time.Minute
	limiterIdleTimeout   = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client.
//
// Buckets idle for longer than the idle timeout are dropped on a periodic sweep.
// The timeout is never shorter than the time a bucket takes to refill,
// so a dropped bucket was already full.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	limiters  map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perSecond requests per client with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := limiterIdleTimeout
	if perSecond > 0 {
		if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

// Allow reports whether client may make another request now.
func (rl *RateLimiter) Allow(client string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterSweepInterval {
		rl.sweep(now)
		rl.lastSweep = now
	}

	entry, ok := rl.limiters[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets not used since now minus the idle timeout. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for client, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idle {
			delete(rl.limiters, client)
		}
	}
}

// Len returns the number of clients currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// RateLimit answers 429 once a client exhausts its bucket.
func RateLimit(rl *RateLimiter, clients ClientResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clients.Resolve(r)) {
				writeJSON(w, http.StatusTooManyRequests, envelope{Response: empty{}, Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientResolver attributes requests to a client address.
// Forwarding headers are only believed when the peer is a trusted proxy.
type ClientResolver struct {
	trusted map[string]bool
}

// NewClientResolver trusts the proxies at the given IP addresses.
func NewClientResolver(trustedProxies []string) ClientResolver {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			trusted[ip.String()] = true
		}
	}
	return ClientResolver{trusted: trusted}
}

// Resolve returns the peer address, or for a trusted proxy the first valid
// X-Forwarded-For hop, then X-Real-IP.
func (c ClientResolver) Resolve(r *http.Request) string {
	peer := remoteHost(r)
	if !c.trusted[peer] {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}
