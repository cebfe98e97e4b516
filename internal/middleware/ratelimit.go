package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter throttles the passcode exchange. There is exactly one valid
// passcode, so the token endpoint is the obvious brute-force target;
// attempts are counted per remote address over a fixed window. A background
// sweep drops addresses that have gone quiet until Stop shuts it down.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptWindow
	limit    int
	window   time.Duration
	stopChan chan struct{}
}

type attemptWindow struct {
	count    int
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]*attemptWindow),
		limit:    limit,
		window:   window,
		stopChan: make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for addr, w := range rl.attempts {
				if time.Since(w.lastSeen) > rl.window {
					delete(rl.attempts, addr)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow counts one attempt against the address's window. A hammering client
// keeps refreshing lastSeen, so the budget only resets once it backs off for
// a full window.
func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.attempts[addr]
	if !ok || time.Since(w.lastSeen) > rl.window {
		rl.attempts[addr] = &attemptWindow{count: 1, lastSeen: time.Now()}
		return true
	}
	w.count++
	w.lastSeen = time.Now()
	return w.count <= rl.limit
}
