// Package wait polls live browser state until a condition holds or its
// window elapses. Every read of dynamic state goes through here first.
package wait

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"
)

// DefaultPollInterval is used when a Waiter is built with a non-positive interval
const DefaultPollInterval = 100 * time.Millisecond

// Waiter holds only its poll interval, so one value can be shared by every
// scenario running in parallel.
type Waiter struct {
	interval time.Duration
}

// New creates a Waiter polling at interval
func New(interval time.Duration) Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return Waiter{interval: interval}
}

// Interval returns the poll interval
func (w Waiter) Interval() time.Duration {
	if w.interval <= 0 {
		return DefaultPollInterval
	}
	return w.interval
}

// WaitFor blocks until loc satisfies cond or cond.Timeout elapses.
// The locator is re-resolved on every attempt. A non-positive timeout fails
// with a TimeoutError straight away.
func (w Waiter) WaitFor(ctx context.Context, b interfaces.Browser, loc entities.Locator, cond entities.WaitCondition) error {
	if cond.Timeout <= 0 {
		return &entities.TimeoutError{Locator: loc, Condition: cond}
	}

	var last entities.ElementState
	err := w.poll(ctx, cond.Timeout, func(ctx context.Context) (bool, error) {
		state, err := b.Inspect(ctx, loc)
		if err != nil {
			return false, fmt.Errorf("inspect %s: %w", loc.Name, err)
		}
		last = state
		return cond.Target.Satisfied(state), nil
	})
	if errors.Is(err, errWindowElapsed) {
		return &entities.TimeoutError{Locator: loc, Condition: cond, Last: last}
	}
	return err
}

// WaitForURL blocks until the browser location matches pattern and returns it.
// On expiry it fails with a NavigationMismatchError carrying the last URL seen.
func (w Waiter) WaitForURL(ctx context.Context, b interfaces.Browser, pattern *regexp.Regexp, timeout time.Duration) (string, error) {
	var current string
	if timeout <= 0 {
		u, err := b.CurrentURL(ctx)
		if err != nil {
			return "", fmt.Errorf("read current url: %w", err)
		}
		return "", &entities.NavigationMismatchError{Pattern: pattern.String(), Actual: u, Timeout: timeout}
	}

	err := w.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		u, err := b.CurrentURL(ctx)
		if err != nil {
			return false, fmt.Errorf("read current url: %w", err)
		}
		current = u
		return pattern.MatchString(u), nil
	})
	if errors.Is(err, errWindowElapsed) {
		return "", &entities.NavigationMismatchError{Pattern: pattern.String(), Actual: current, Timeout: timeout}
	}
	if err != nil {
		return "", err
	}
	return current, nil
}

var errWindowElapsed = errors.New("wait window elapsed")

// poll runs check immediately and then on every tick until it reports true,
// returns an error, or the window closes. Cancellation of the parent context
// is reported as the context error, not as an elapsed window.
func (w Waiter) poll(ctx context.Context, window time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(window)
	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := check(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errWindowElapsed
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// one last look at the deadline before giving up
			ok, err := check(ctx)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			return errWindowElapsed
		case <-ticker.C:
			timer.Stop()
		}
	}
}
