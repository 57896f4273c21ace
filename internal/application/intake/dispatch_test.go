package intake_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/alejandrodnm/journalbot/internal/application/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	byChat map[int64][]int
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, ev intake.Event) error {
	n, _ := strconv.Atoi(ev.Data)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byChat[ev.ChatID] = append(h.byChat[ev.ChatID], n)
	return h.err
}

func TestDispatcher_PreservesPerChatOrder(t *testing.T) {
	h := &recordingHandler{byChat: make(map[int64][]int)}
	d := intake.NewDispatcher(h, 4)
	d.Start(context.Background())

	chats := []int64{1, 2, 3, -1001234567890}
	const perChat = 200
	for i := 0; i < perChat; i++ {
		for _, chat := range chats {
			err := d.Submit(context.Background(), intake.Event{ChatID: chat, Kind: intake.EventText, Data: strconv.Itoa(i)})
			require.NoError(t, err)
		}
	}
	d.Stop()

	for _, chat := range chats {
		got := h.byChat[chat]
		require.Len(t, got, perChat, "chat %d", chat)
		for i, n := range got {
			assert.Equal(t, i, n, "chat %d fuera de orden", chat)
		}
	}
}

func TestDispatcher_HandlerErrorsDoNotStopWorkers(t *testing.T) {
	h := &recordingHandler{byChat: make(map[int64][]int), err: errors.New("boom")}
	d := intake.NewDispatcher(h, 1)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Submit(context.Background(), intake.Event{ChatID: 9, Data: strconv.Itoa(i)}))
	}
	d.Stop()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, h.byChat[9])
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d := intake.NewDispatcher(&recordingHandler{byChat: make(map[int64][]int)}, 2)
	d.Start(context.Background())
	d.Stop()
	d.Stop() // idempotente

	err := d.Submit(context.Background(), intake.Event{ChatID: 1})
	assert.ErrorIs(t, err, intake.ErrDispatcherStopped)
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := intake.NewDispatcher(&recordingHandler{byChat: make(map[int64][]int)}, 0)
	assert.Greater(t, d.Workers(), 0)
}

func TestDispatcher_DrivesFlow(t *testing.T) {
	f, store, _, _ := newFlow()
	d := intake.NewDispatcher(f, 3)
	d.Start(context.Background())

	for _, chat := range []int64{21, 22, 23} {
		for _, ev := range happyPath(chat, "AAPL") {
			require.NoError(t, d.Submit(context.Background(), ev))
		}
	}
	d.Stop()

	assert.Len(t, store.saved, 3)
}
