package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TimeSource is the slice of the authority used for clock sampling.
type TimeSource interface {
	SampleServerTime(ctx context.Context) (time.Time, error)
}

// ClockSync estimates the offset between the local clock and the
// authority's clock with a single NTP-style round trip. The estimate is
// accurate to within half the observed round-trip time.
type ClockSync struct {
	source TimeSource
	clock  Clock

	mu     sync.RWMutex
	offset time.Duration
}

func NewClockSync(source TimeSource, clock Clock) *ClockSync {
	return &ClockSync{
		source: source,
		clock:  clock,
	}
}

// Sample performs one round trip and updates the stored offset. A
// failed request keeps the previous offset (zero before the first
// success); timing then proceeds best-effort.
func (s *ClockSync) Sample(ctx context.Context) time.Duration {
	send := s.clock.Now()
	serverTime, err := s.source.SampleServerTime(ctx)
	recv := s.clock.Now()
	if err != nil {
		log.Warn().Err(err).Msg("clock sample failed, keeping previous offset")
		return s.Offset()
	}

	latency := recv.Sub(send) / 2
	offset := serverTime.Sub(recv.Add(-latency))

	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()

	log.Debug().
		Dur("offset", offset).
		Dur("latency", latency).
		Msg("sampled clock offset")
	return offset
}

// Offset returns the current offset estimate.
func (s *ClockSync) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// Now returns the local time corrected into the authority's clock.
func (s *ClockSync) Now() time.Time {
	return s.clock.Now().Add(s.Offset())
}
