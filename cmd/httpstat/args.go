package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// schedule is the iteration contract derived from positional arguments.
type schedule struct {
	// url is the target to probe.
	url string

	// delay is the pause between probe starts.
	delay time.Duration

	// count is the number of ticks; 0 means run until interrupted.
	count int
}

// parseSchedule applies the vmstat/iostat argument semantics:
//
//	url              one tick, no delay
//	url delay        unbounded ticks, delay seconds apart
//	url delay count  exactly count ticks, delay seconds apart
//
// The delay argument is seconds as a float, so sub-second intervals like
// 0.5 are accepted. defaultDelay fills in when no delay is given.
func parseSchedule(args []string, defaultDelay time.Duration) (schedule, error) {
	if len(args) == 0 {
		return schedule{}, errors.New("the url argument is required")
	}

	s := schedule{
		url:   args[0],
		delay: defaultDelay,
	}

	switch len(args) {
	case 1:
		s.count = 1
	case 2, 3:
		secs, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return schedule{}, fmt.Errorf("invalid delay %q: %w", args[1], err)
		}
		if secs < 0 {
			return schedule{}, fmt.Errorf("delay must not be negative, got %s", args[1])
		}
		s.delay = time.Duration(secs * float64(time.Second))

		if len(args) == 3 {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return schedule{}, fmt.Errorf("invalid count %q: %w", args[2], err)
			}
			if count < 1 {
				return schedule{}, fmt.Errorf("count must be at least 1, got %d", count)
			}
			s.count = count
		}
	default:
		return schedule{}, fmt.Errorf("expected 1 to 3 arguments, got %d", len(args))
	}

	return s, nil
}
