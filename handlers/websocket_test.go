package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestNotifyUser_ConcurrentDelivery(t *testing.T) {
	var delivered int64
	client := &ConnectedClient{}
	client.fun = func(data []byte) bool {
		atomic.AddInt64(&delivered, 1)
		return true
	}
	addClient(userSocketID(42), client)
	defer removeClient(userSocketID(42), client)

	// Events arrive from request goroutines and the watcher at once
	const senders = 8
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			NotifyUser(42, Event{Type: EventTypeUpload})
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt64(&delivered); got != senders {
		t.Errorf("delivered %d events, want %d", got, senders)
	}
}

func TestNotifyUser_NoClients(t *testing.T) {
	// Must not panic or create registry entries for unconnected users
	NotifyUser(9999, Event{Type: EventTypeIngest})
	if _, ok := ConnectedUsers.Get(userSocketID(9999)); ok {
		t.Error("notify created a registry entry for an unconnected user")
	}
}
