package proxy

import (
	"net/http"
	"testing"
)

func TestNewClient(t *testing.T) {
	direct, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient(\"\"): %v", err)
	}
	if direct.Transport != nil {
		t.Error("direct client should use the default transport")
	}

	socks, err := NewClient("127.0.0.1:1080")
	if err != nil {
		t.Fatalf("NewClient(socks): %v", err)
	}
	if _, ok := socks.Transport.(*http.Transport); !ok {
		t.Errorf("transport = %T, want *http.Transport", socks.Transport)
	}
	if socks.Timeout != clientTimeout {
		t.Errorf("timeout = %v", socks.Timeout)
	}
}
