package calendar

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/javanhut/ots-go/internal/codec"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

func fragmentBytes(t *testing.T) []byte {
	t.Helper()
	tree := ots.PathsToTree([]ots.Path{
		{Ops: []ots.Op{{Kind: ots.OpSHA256}}, Leaf: ots.BitcoinLeaf(358391)},
	})
	data, err := codec.WriteFragment(tree)
	if err != nil {
		t.Fatalf("WriteFragment failed: %v", err)
	}
	return data
}

func TestTimestampFetchesFragment(t *testing.T) {
	message := []byte{0x01, 0x02, 0x03}
	fragment := fragmentBytes(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		wantPath := "/timestamp/" + wire.ToHex(message)
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		if got := r.Header.Get("Accept"); got != AcceptHeader {
			t.Errorf("Accept = %q, want %q", got, AcceptHeader)
		}
		w.Write(fragment)
	}))
	defer server.Close()

	client := NewClient()
	tree, err := client.Timestamp(context.Background(), server.URL, message)
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	paths := tree.Paths()
	if len(paths) != 1 || paths[0].Leaf.Height != 358391 {
		t.Errorf("unexpected fragment: %v", paths)
	}
}

func TestSubmitPostsDigest(t *testing.T) {
	digest := []byte{0xaa, 0xbb}
	fragment := fragmentBytes(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/digest" {
			t.Errorf("path = %s, want /digest", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != string(digest) {
			t.Errorf("body = %x, want %x", body, digest)
		}
		w.Write(fragment)
	}))
	defer server.Close()

	client := NewClient()
	tree, err := client.Submit(context.Background(), server.URL, digest)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(tree.Paths()) != 1 {
		t.Errorf("unexpected fragment: %v", tree.Paths())
	}
}

func TestTimestampRejectsTrailingGarbage(t *testing.T) {
	fragment := append(fragmentBytes(t), 0x00)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(fragment)
	}))
	defer server.Close()

	_, err := NewClient().Timestamp(context.Background(), server.URL, []byte{0x01})
	if err == nil || !strings.Contains(err.Error(), "garbage at end of calendar response") {
		t.Errorf("trailing garbage = %v, want garbage at end of calendar response", err)
	}
}

func TestTimestampReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient().Timestamp(context.Background(), server.URL, []byte{0x01})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("404 response = %v, want status error", err)
	}
}

func TestDefaultCalendarsAreValid(t *testing.T) {
	if len(DefaultCalendars) != 4 {
		t.Fatalf("default calendar count = %d, want 4", len(DefaultCalendars))
	}
	for _, raw := range DefaultCalendars {
		if _, err := ots.ParseCalendarURL(raw); err != nil {
			t.Errorf("default calendar %q invalid: %v", raw, err)
		}
	}
}
