package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Window is a single allowed posting interval within a day. Both bounds are
// inclusive. Windows do not wrap past midnight: a window whose start is
// later than its end can never match, matching the upstream semantics.
type Window struct {
	start int // minutes since midnight
	end   int
}

// ParseWindow builds a Window from "HH:MM" start and end times.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseMinutes(start)
	if err != nil {
		return Window{}, fmt.Errorf("window start: %w", err)
	}
	e, err := parseMinutes(end)
	if err != nil {
		return Window{}, fmt.Errorf("window end: %w", err)
	}
	return Window{start: s, end: e}, nil
}

// Contains reports whether the time of day of t falls inside the window,
// bounds inclusive. Comparison is at minute granularity, matching the
// "HH:MM" configuration format.
func (w Window) Contains(t time.Time) bool {
	minutes := t.Hour()*60 + t.Minute()
	return w.start <= minutes && minutes <= w.end
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.start/60, w.start%60, w.end/60, w.end%60)
}

func parseMinutes(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}
	return hour*60 + minute, nil
}

// Scheduler gates posting to configured time-of-day windows and supplies
// randomized inter-post delays. It holds no timers itself; callers drive
// the poll-and-sleep loop.
type Scheduler struct {
	windows  []Window
	minDelay int // seconds
	maxDelay int

	clock func() time.Time
	rng   *rand.Rand
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRand overrides the random source used for delays.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// New constructs a Scheduler from parsed windows and a delay range in
// seconds (both bounds inclusive).
func New(windows []Window, minDelaySeconds, maxDelaySeconds int, opts ...Option) (*Scheduler, error) {
	if len(windows) == 0 {
		return nil, errors.New("scheduler requires at least one time window")
	}
	if minDelaySeconds < 0 || maxDelaySeconds < minDelaySeconds {
		return nil, fmt.Errorf("invalid delay range [%d, %d]", minDelaySeconds, maxDelaySeconds)
	}
	s := &Scheduler{
		windows:  append([]Window(nil), windows...),
		minDelay: minDelaySeconds,
		maxDelay: maxDelaySeconds,
		clock:    time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsWithinSchedule reports whether the current time of day falls inside any
// configured window.
func (s *Scheduler) IsWithinSchedule() bool {
	now := s.clock()
	for _, w := range s.windows {
		if w.Contains(now) {
			return true
		}
	}
	return false
}

// RandomDelay returns a uniform random delay in [minDelay, maxDelay]
// seconds, at whole-second resolution.
func (s *Scheduler) RandomDelay() time.Duration {
	span := s.maxDelay - s.minDelay
	seconds := s.minDelay
	if span > 0 {
		seconds += s.rng.Intn(span + 1)
	}
	return time.Duration(seconds) * time.Second
}

// Windows returns the configured windows, for status output.
func (s *Scheduler) Windows() []Window {
	return append([]Window(nil), s.windows...)
}
