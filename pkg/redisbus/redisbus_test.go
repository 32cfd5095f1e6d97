package redisbus

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trickmatch-server/pkg/match"
)

type recorder struct {
	mu      sync.Mutex
	matches []string
}

func (r *recorder) Notify(ctx context.Context, matchID string, summary *match.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, matchID)
	return nil
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.matches...)
}

func Test_decode(t *testing.T) {
	summary := &match.Summary{
		ID:           "m1",
		CurrentRound: match.Round2,
		CurrentTurn:  "B",
		RoundWinners: map[match.Round]match.TeamID{match.Round1: match.Team2},
	}

	raw, err := encode("m1", summary)
	require.NoError(t, err)

	matchID, decoded, err := decode(string(raw))
	assert.NoError(t, err)
	assert.Equal(t, "m1", matchID)
	assert.Equal(t, summary, decoded)

	_, _, err = decode("not json")
	assert.Error(t, err)

	_, _, err = decode(`{"matchId":"m1"}`)
	assert.EqualError(t, err, "payload is missing the match")
}

func TestNew_missingAddr(t *testing.T) {
	_, err := New(context.Background(), "", "", nil)
	assert.Equal(t, ErrMissingAddr, err)
}

func TestBus(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	logger, _ := test.NewNullLogger()
	bus, err := New(context.Background(), addr, "trickmatch-test-"+uuid.New().String(), logger)
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := &recorder{}
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- bus.Forward(ctx, r, ready)
	}()

	select {
	case <-ready:
	case <-time.After(time.Second * 5):
		t.Fatal("subscription never started")
	}

	require.NoError(t, bus.Notify(context.Background(), "m1", &match.Summary{ID: "m1"}))
	require.NoError(t, bus.Notify(context.Background(), "m2", &match.Summary{ID: "m2"}))
	assert.Eventually(t, func() bool {
		return len(r.received()) == 2
	}, time.Second*5, time.Millisecond*10)
	assert.Equal(t, []string{"m1", "m2"}, r.received())

	cancel()
	assert.NoError(t, <-done)
}
