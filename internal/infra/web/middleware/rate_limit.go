package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DioGolang/fleettrack/pkg/logger"
)

type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// CleanupInterval is how often idle clients are evicted.
	CleanupInterval time.Duration
	ClientTimeout   time.Duration
}

// IPDispatcher hands out one token bucket per client IP.
type IPDispatcher struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   RateLimiterConfig
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(conf RateLimiterConfig) *IPDispatcher {
	if conf.CleanupInterval <= 0 {
		conf.CleanupInterval = time.Minute
	}
	if conf.ClientTimeout <= 0 {
		conf.ClientTimeout = 3 * time.Minute
	}
	return &IPDispatcher{
		visitors: make(map[string]*visitor),
		config:   conf,
		now:      time.Now,
	}
}

// Run evicts idle visitors until ctx is done.
func (d *IPDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.evictIdle()
		}
	}
}

func (d *IPDispatcher) evictIdle() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	evicted := 0
	for ip, v := range d.visitors {
		if d.now().Sub(v.lastSeen) > d.config.ClientTimeout {
			delete(d.visitors, ip)
			evicted++
		}
	}
	return evicted
}

func (d *IPDispatcher) Handler(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !d.getVisitor(ip).Allow() {
				log.Warn(r.Context(), "Rate limit exceeded",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status":  "error",
					"message": "Too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (d *IPDispatcher) getVisitor(ip string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, exists := d.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)}
		d.visitors[ip] = v
	}
	v.lastSeen = d.now()
	return v.limiter
}
