package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srvT, err := Upgrade(w, r, UpgradeOptions{})
		if err != nil {
			return
		}
		defer srvT.Close()
		ctx := context.Background()
		for {
			b, err := srvT.ReadBinary(ctx)
			if err != nil {
				return
			}
			if err := srvT.WriteBinary(ctx, b); err != nil {
				return
			}
		}
	}))
}

func TestDialUpgradeRoundTrip(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cliT, resp, err := Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cliT.Close()
	if got := resp.Header.Get("Sec-WebSocket-Protocol"); got != Subprotocol {
		t.Fatalf("subprotocol = %q, want %q", got, Subprotocol)
	}

	if err := cliT.WriteBinary(ctx, []byte("hello")); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	b, err := cliT.ReadBinary(ctx)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q, want %q", b, "hello")
	}
}

func TestReadBinaryHonorsContextCancel(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()

	cliT, _, err := Dial(dialCtx, wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer cliT.Close()

	readCtx, readCancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := cliT.ReadBinary(readCtx)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	readCancel()

	select {
	case err := <-errCh:
		if err == nil || !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("ReadBinary did not return after context cancellation")
	}
}
