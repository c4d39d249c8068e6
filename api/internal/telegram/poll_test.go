package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-helper/api/internal/logger"
)

const (
	timeout = 3 * time.Second
	tick    = 10 * time.Millisecond
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	assert.Zero(t, retryDelayFromError(nil))
	assert.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("Too Many Requests")))
	assert.Equal(t, 2*time.Second, retryDelayFromError(timeoutErr{}))
	assert.Equal(t, pollBaseDelay, retryDelayFromError(errors.New("boom")))
}

type scriptedUpdater struct {
	mu      sync.Mutex
	batches [][]tgbotapi.Update
	offsets []int
}

func (s *scriptedUpdater) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets = append(s.offsets, cfg.Offset)
	if len(s.batches) == 0 {
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

func (s *scriptedUpdater) seenOffsets() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.offsets...)
}

func TestRunPollingAdvancesOffset(t *testing.T) {
	up := &scriptedUpdater{batches: [][]tgbotapi.Update{
		{{UpdateID: 10}, {UpdateID: 11}},
		{{UpdateID: 12}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunPolling(ctx, up, logger.Nop(), func(u tgbotapi.Update) {
			mu.Lock()
			got = append(got, u.UpdateID)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return len(up.seenOffsets()) >= 3 }, timeout, tick)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{10, 11, 12}, got)
	assert.Equal(t, []int{0, 12, 13}, up.seenOffsets()[:3])
}
