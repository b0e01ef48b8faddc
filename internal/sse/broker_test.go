package sse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/preview"
	"github.com/starford/scribe/internal/testutil"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeView, Data: map[string]string{"mode": "preview"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: view.changed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"mode":"preview"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestReplayLatestToNewSubscriber(t *testing.T) {
	b := NewBroker(TypePreview)
	defer b.Close()

	b.Publish(Event{Type: TypePreview, Data: map[string]string{"html": "old"}})
	b.Publish(Event{Type: TypePreview, Data: map[string]string{"html": "new"}})
	b.Publish(Event{Type: TypeSaved, Data: map[string]string{}})

	time.Sleep(50 * time.Millisecond)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), `"html":"new"`) {
			t.Errorf("replayed %q, want latest preview", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no replay")
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra replay %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeSaved, Data: map[string]string{"file": "notes.md"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: document.saved") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.Publish(Event{Type: TypeView, Data: map[string]string{}})
}

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return ""
	}
}

func TestSurface_PublishesEngineNotifications(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	s := NewSurface(b, testutil.Logger())

	s.PreviewRendered(preview.Encode("# Hi <b>"))
	msg := receive(t, ch)
	if !strings.Contains(msg, "event: preview.updated") || !strings.Contains(msg, "Hi") {
		t.Errorf("preview event = %q", msg)
	}

	s.ViewChanged(engine.Preview)
	if msg := receive(t, ch); !strings.Contains(msg, `"mode":"preview"`) {
		t.Errorf("view event = %q", msg)
	}

	s.SaveAttempted(engine.Attempt{Err: errors.New("nope")})
	s.SaveAttempted(engine.Attempt{File: "/p/notes.md", Trigger: engine.TriggerTimer, Checksum: "abc"})
	if msg := receive(t, ch); !strings.Contains(msg, "event: document.saved") || !strings.Contains(msg, `"checksum":"abc"`) {
		t.Errorf("saved event = %q", msg)
	}

	s.SaveFailed(engine.FailureReport{Path: "/p/notes.md", Attempts: 3})
	if msg := receive(t, ch); !strings.Contains(msg, "event: save.failed") || !strings.Contains(msg, "read-only") {
		t.Errorf("failure event = %q", msg)
	}

	s.ProfileLoaded("/p", errors.New("denied"))
	if msg := receive(t, ch); !strings.Contains(msg, `"error":"denied"`) {
		t.Errorf("profile event = %q", msg)
	}
}
