package http11

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func newTestResponseWriter() (*ResponseWriter, *bytes.Buffer) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	return newResponseWriter(w, false, false), &buf
}

func TestResponseWriterAutoFramesContentLength(t *testing.T) {
	rw, buf := newTestResponseWriter()
	_, _ = rw.Write([]byte("hello world"))
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Content-Length: 11\r\n") {
		t.Errorf("missing auto Content-Length, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "hello world") {
		t.Errorf("body not written verbatim, got:\n%s", out)
	}
}

func TestResponseWriterHeadSuppressesBody(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	rw := newResponseWriter(w, true, false)
	_, _ = rw.Write([]byte("hello"))
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hello") {
		t.Errorf("HEAD response should not include body, got:\n%s", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Errorf("HEAD response should still declare Content-Length, got:\n%s", out)
	}
}

func TestResponseWriterPromotesToChunkedOverLimit(t *testing.T) {
	rw, buf := newTestResponseWriter()
	big := strings.Repeat("x", bufferedBodyLimit+1)
	if _, err := rw.Write([]byte(big)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Errorf("expected chunked promotion, got headers:\n%s", out[:200])
	}
	if strings.Contains(out, "Content-Length:") {
		t.Errorf("chunked response must not also declare Content-Length")
	}
}

func TestResponseWriterTruncatesOverDeclaredLength(t *testing.T) {
	rw, buf := newTestResponseWriter()
	rw.Header().Set("Content-Length", "5")
	_, _ = rw.Write([]byte("hello world"))
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !rw.WillClose() {
		t.Error("overrun response should force connection close")
	}
	out := buf.String()
	if !strings.HasSuffix(out, "hello") {
		t.Errorf("body should be truncated to declared length, got:\n%s", out)
	}
}

func TestResponseWriterExplicitContentLengthRespected(t *testing.T) {
	rw, buf := newTestResponseWriter()
	rw.Header().Set("Content-Length", strconv.Itoa(len("exact")))
	_, _ = rw.Write([]byte("exact"))
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "exact") {
		t.Errorf("expected body exact, got:\n%s", buf.String())
	}
}
