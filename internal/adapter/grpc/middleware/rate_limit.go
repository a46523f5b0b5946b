package middleware

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-crud-service/pkg/ratelimit"
)

// RateLimiter applies the shared token bucket to gRPC unary calls.
type RateLimiter struct {
	limiter        *ratelimit.Limiter
	log            *zap.Logger
	trustedProxies []netip.Prefix
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithTrustedProxies honours x-forwarded-for and x-real-ip only when the
// connecting peer falls inside one of prefixes.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(rl *RateLimiter) {
		rl.trustedProxies = prefixes
	}
}

// NewRateLimiter creates a new rate limiter interceptor.
func NewRateLimiter(limiter *ratelimit.Limiter, log *zap.Logger, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		limiter: limiter,
		log:     log,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		// Skip rate limiting if disabled
		if !rl.limiter.Enabled() {
			return handler(ctx, req)
		}

		clientIP := rl.clientIP(ctx)
		key := fmt.Sprintf("%s:%s", info.FullMethod, clientIP)

		allowed, err := rl.limiter.Allow(ctx, key)
		if err != nil {
			// On Redis error, allow request to proceed (fail open)
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if !allowed {
			cfg := rl.limiter.Config()
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Float64("limit", cfg.RequestsPerSecond),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				cfg.RequestsPerSecond, cfg.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// clientIP identifies the caller by its peer address. Forwarding metadata is
// believed only when the peer is a trusted proxy.
func (rl *RateLimiter) clientIP(ctx context.Context) string {
	host := peerHost(ctx)

	if rl.isTrusted(host) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
				first, _, _ := strings.Cut(xff[0], ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if xri := md.Get("x-real-ip"); len(xri) > 0 && xri[0] != "" {
				return strings.TrimSpace(xri[0])
			}
		}
	}

	if host == "" {
		return "unknown"
	}
	return host
}

func (rl *RateLimiter) isTrusted(host string) bool {
	if len(rl.trustedProxies) == 0 || host == "" {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// peerHost returns the peer address without the ephemeral port.
func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}
