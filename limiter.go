package sitepress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SearchLimiter rate-limits search requests per IP address with a token
// bucket per client.
type SearchLimiter struct {
	mu       sync.Mutex
	clients  map[string]*searchClient
	limit    rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type searchClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSearchLimiter allows perMinute requests per IP with the given burst.
// Clients idle for longer than idle are forgotten.
func NewSearchLimiter(perMinute, burst int, idle time.Duration) *SearchLimiter {
	l := &SearchLimiter{
		clients: make(map[string]*searchClient),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    idle,
		stop:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *SearchLimiter) cleanup() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.prune(time.Now().Add(-l.idle))
		}
	}
}

func (l *SearchLimiter) prune(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Allow reports whether the IP may search now and consumes a token if so.
func (l *SearchLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &searchClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// Len returns the number of tracked clients.
func (l *SearchLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop ends the background cleanup. It is safe to call more than once.
func (l *SearchLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
