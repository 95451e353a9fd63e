package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_SendToAllUserConnections(t *testing.T) {
	hub := startHub(t)
	a := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 10}
	b := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 10}
	other := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 11}
	require.True(t, hub.Join(a))
	require.True(t, hub.Join(b))
	require.True(t, hub.Join(other))

	require.Eventually(t, func() bool { return hub.IsOnline(10) && hub.IsOnline(11) }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.SendMessageToUser(10, map[string]string{"k": "v"}, TypeNotification))

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var env Envelope
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.Equal(t, TypeNotification, env.Type)
		case <-time.After(time.Second):
			t.Fatal("сообщение не доставлено")
		}
	}
	assert.Len(t, other.Send, 0)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := startHub(t)
	c := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 3}
	require.True(t, hub.Join(c))
	require.Eventually(t, func() bool { return hub.IsOnline(3) }, time.Second, 5*time.Millisecond)

	hub.leave(c)

	require.Eventually(t, func() bool { return !hub.IsOnline(3) }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := startHub(t)
	c := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 4}
	require.True(t, hub.Join(c))
	require.Eventually(t, func() bool { return hub.IsOnline(4) }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.SendMessageToUser(4, "one", TypeNotification))
	done := make(chan struct{})
	go func() {
		_ = hub.SendMessageToUser(4, "two", TypeNotification)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("отправка заблокировалась")
	}
}

func TestHub_OfflineUserIsNoop(t *testing.T) {
	hub := startHub(t)
	assert.NoError(t, hub.SendMessageToUser(999, "x", TypeNotification))
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: 5}
	require.True(t, hub.Join(c))
	require.Eventually(t, func() bool { return hub.IsOnline(5) }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped
	_, open := <-c.Send
	assert.False(t, open)

	done := make(chan struct{})
	go func() {
		hub.leave(c)
		assert.False(t, hub.Join(&Client{Hub: hub, Send: make(chan []byte, 1), UserID: 6}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("отключение после остановки хаба заблокировалось")
	}
}
