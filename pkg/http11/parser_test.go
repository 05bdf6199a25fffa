package http11

import (
	"bufio"
	"strings"
	"testing"
)

func TestParserParsesSimpleGET(t *testing.T) {
	raw := "GET /foo?a=1 HTTP/1.1\r\nHost: example.com\r\nUser-Agent: test\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	if err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	if req.Path != "/foo" {
		t.Errorf("Path = %q, want /foo", req.Path)
	}
	if req.RawQuery != "a=1" {
		t.Errorf("RawQuery = %q, want a=1", req.RawQuery)
	}
	if req.Host != "example.com" {
		t.Errorf("Host = %q, want example.com", req.Host)
	}
}

func TestParserRejectsDuplicateConflictingContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\nContent-Length: 9\r\n\r\nhello"
	p := NewParser()
	req := NewRequest()
	err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes)
	if err == nil {
		t.Fatal("expected error for conflicting Content-Length, got nil")
	}
}

func TestParserRejectsContentLengthWithTransferEncoding(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes)
	if err == nil {
		t.Fatal("expected smuggling error, got nil")
	}
}

func TestParserAcceptsHTTP10(t *testing.T) {
	raw := "GET / HTTP/1.0\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	if err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.ProtoMinor != 0 {
		t.Errorf("ProtoMinor = %d, want 0", req.ProtoMinor)
	}
	if !req.ShouldClose() {
		t.Error("HTTP/1.0 request without keep-alive should close")
	}
}

func TestParserRejectsWhitespaceBeforeColon(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost : h\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes)
	if err == nil {
		t.Fatal("expected error for whitespace before colon, got nil")
	}
}

func TestParserEnforcesPreambleBudget(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 200) + "\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, 32)
	if err == nil {
		t.Fatal("expected preamble-too-large error, got nil")
	}
}

func TestParserSetsUpChunkedBody(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: h\r\nTransfer-Encoding: chunked\r\n\r\n4\r\ntest\r\n0\r\n\r\n"
	p := NewParser()
	req := NewRequest()
	if err := p.Parse(bufio.NewReader(strings.NewReader(raw)), req, DefaultMaxPreambleBytes); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !req.IsChunked() {
		t.Fatal("expected chunked body")
	}
}
