// Package backoff computes the exponential reconnect delay and the
// retry-budget decision the client's reconnect loop consults before
// each dial attempt.
package backoff

import (
	"math/rand"

	"time"

	"github.com/kso-sdk/openevent-client/config"
)

// Calculate returns the delay before the retryCount'th reconnect
// attempt (1-indexed), per spec.md §4.3:
//
//	interval = min(baseInterval * multiplier^(retryCount-1), maxInterval)
//
// followed by an optional +/- jitter fraction drawn from rnd. Pass a
// deterministic rnd in tests to get a repeatable series; production
// callers pass rand.New(rand.NewSource(time.Now().UnixNano())) once
// and reuse it across attempts.
func Calculate(cfg config.ReconnectConfig, retryCount int, rnd *rand.Rand) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}

	interval := float64(cfg.BaseInterval)
	for i := 1; i < retryCount; i++ {
		interval *= cfg.Multiplier
	}
	if max := float64(cfg.MaxInterval); interval > max {
		interval = max
	}

	if cfg.Jitter > 0 && rnd != nil {
		// jitter in [-cfg.Jitter, +cfg.Jitter] of interval
		delta := interval * cfg.Jitter * (2*rnd.Float64() - 1)
		interval += delta
		if interval < 0 {
			interval = 0
		}
	}

	return time.Duration(interval)
}

// ShouldReconnect reports whether the reconnect loop should attempt
// another dial, per spec.md §4.3's truth table: never when
// AutoReconnect is disabled, always when MaxRetry is unlimited (-1),
// otherwise only while retryCount has not yet exhausted the budget.
func ShouldReconnect(cfg config.ReconnectConfig, retryCount int) bool {
	if !cfg.AutoReconnect {
		return false
	}
	if cfg.MaxRetry == -1 {
		return true
	}
	return retryCount < cfg.MaxRetry
}
