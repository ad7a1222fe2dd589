// Package ratelimit constructs the token-bucket limiters used to pace
// controller API calls and bulk email sends.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a new rate limiter with specified requests per minute.
// It uses a token bucket algorithm where tokens are replenished continuously
// at the rate of requestsPerMinute/60 per second, with a burst capacity equal
// to requestsPerMinute.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
}

// NewPerSecondLimiter creates a rate limiter with specified requests per
// second and a burst of one. Used for pacing sequential work such as
// campaign email delivery, where bursts would defeat the purpose.
func NewPerSecondLimiter(requestsPerSecond int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}
