package http11

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestChunkedReaderDecodesBody(t *testing.T) {
	raw := "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	cr := newChunkedReader(bufio.NewReader(strings.NewReader(raw)), 0, nil)
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Wikipedia" {
		t.Errorf("got %q, want Wikipedia", got)
	}
}

func TestChunkedReaderAppendsTrailers(t *testing.T) {
	raw := "4\r\ntest\r\n0\r\nX-Checksum: abc123\r\n\r\n"
	h := NewHeader()
	cr := newChunkedReader(bufio.NewReader(strings.NewReader(raw)), 0, h)
	if _, err := io.ReadAll(cr); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got := h.Get("X-Checksum"); got != "abc123" {
		t.Errorf("trailer X-Checksum = %q, want abc123", got)
	}
}

func TestChunkedReaderRejectsBadSize(t *testing.T) {
	raw := "zz\r\nbody\r\n0\r\n\r\n"
	cr := newChunkedReader(bufio.NewReader(strings.NewReader(raw)), 0, nil)
	_, err := io.ReadAll(cr)
	if err == nil {
		t.Fatal("expected error for malformed chunk size, got nil")
	}
}

func TestChunkedWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cw := newChunkedWriter(&buf)
	if _, err := cw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	cr := newChunkedReader(bufio.NewReader(&buf), 0, nil)
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want hello", got)
	}
}
