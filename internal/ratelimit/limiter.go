// Package ratelimit limits how fast a user can write themes and form styling.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config holds rate limit configuration.
type Config struct {
	Window          time.Duration // Length of the fixed counting window (default: 1m)
	MaxPerUser      int           // Writes per user per window (default: 120)
	MaxPerIP        int           // Writes per client IP per window (default: 600)
	TrustProxy      bool          // Read the client IP from X-Forwarded-For / X-Real-IP
	CleanupInterval time.Duration // How often expired entries are dropped (default: 5m)

	// Clock for testing (nil uses real time)
	Clock clockwork.Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Window:          time.Minute,
		MaxPerUser:      120,
		MaxPerIP:        600,
		CleanupInterval: 5 * time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry counts requests in the window that started at firstAt.
type entry struct {
	count   int
	firstAt time.Time
	lastAt  time.Time
}

// Limiter counts writes per user and per IP in fixed windows.
type Limiter struct {
	config *Config
	clock  clockwork.Clock
	mu     sync.Mutex
	// Keyed by hash of user id or IP
	byUser map[string]*entry
	byIP   map[string]*entry

	// Cleanup goroutine management
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config. Zero fields take the defaults.
func New(cfg *Config) *Limiter {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = defaults.MaxPerUser
	}
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = defaults.MaxPerIP
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byUser:        make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Allow checks both limits and, when the write is allowed, counts it against both.
// A rejected write is not counted. Anonymous callers (empty userID) are limited by IP only.
func (l *Limiter) Allow(userID, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	user := normalizeIdentifier(userID)
	userKey := l.hashKey("user:", user)
	ipKey := l.hashKey("ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	if user != "" {
		if result := l.check(l.byUser[userKey], now, l.config.MaxPerUser, "user_limit"); !result.Allowed {
			return result
		}
	}
	if result := l.check(l.byIP[ipKey], now, l.config.MaxPerIP, "ip_limit"); !result.Allowed {
		return result
	}

	if user != "" {
		l.record(l.byUser, userKey, now)
	}
	l.record(l.byIP, ipKey, now)
	return LimitResult{Allowed: true}
}

func (l *Limiter) check(e *entry, now time.Time, max int, reason string) LimitResult {
	if e == nil {
		return LimitResult{Allowed: true}
	}
	elapsed := now.Sub(e.firstAt)
	if elapsed < l.config.Window && e.count >= max {
		return LimitResult{
			Allowed:    false,
			RetryAfter: l.config.Window - elapsed,
			Reason:     reason,
		}
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) record(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= l.config.Window {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

// Middleware rejects requests over the limit with 429. userID extracts the caller; requests
// without one are only limited by IP.
func (l *Limiter) Middleware(userID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ip := GetClientIP(r, l.config.TrustProxy)
			user := userID(r)
			result := l.Allow(user, ip)
			if !result.Allowed {
				LogRateLimitExceeded(r.Context(), user, ip, result.Reason)
				w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
				http.Error(w, "Too many requests, please slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := l.clock.NewTicker(l.config.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.Chan():
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byUser {
		if now.Sub(e.lastAt) > l.config.Window {
			delete(l.byUser, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > l.config.Window {
			delete(l.byIP, k)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byUser) + len(l.byIP)
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket)
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks a user id for logging, keeping the last four characters.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) >= 8 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with a sanitized user id.
func LogRateLimitExceeded(ctx context.Context, userID, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("user", SanitizeIdentifier(userID)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Theme write rate limit exceeded")
}
