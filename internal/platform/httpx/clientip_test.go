package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseTrustedProxies(t *testing.T) {
	tp, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.10 ", "", "::1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	if len(tp) != 3 {
		t.Fatalf("len = %d, want 3", len(tp))
	}
	for _, ip := range []string{"10.1.2.3", "192.0.2.10", "::1", "::ffff:10.0.0.5"} {
		if !tp.Trusts(ip) {
			t.Errorf("Trusts(%q) = false", ip)
		}
	}
	for _, ip := range []string{"192.0.2.11", "203.0.113.7", "not-an-ip", ""} {
		if tp.Trusts(ip) {
			t.Errorf("Trusts(%q) = true", ip)
		}
	}
	if _, err := ParseTrustedProxies([]string{"10.0.0.0/33"}); err == nil {
		t.Error("expected error for bad prefix")
	}
	if _, err := ParseTrustedProxies([]string{"proxy.internal"}); err == nil {
		t.Error("expected error for hostname")
	}
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		trusted TrustedProxies
		remote  string
		xff     string
		realIP  string
		want    string
	}{
		{name: "remote only", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "untrusted peer spoofs xff", remote: "192.0.2.1:1234", xff: "203.0.113.7", want: "192.0.2.1"},
		{name: "untrusted peer spoofs real ip", remote: "192.0.2.1:1234", realIP: "203.0.113.7", want: "192.0.2.1"},
		{name: "peer not in trusted list", trusted: trusted, remote: "192.0.2.1:1234", xff: "203.0.113.7", want: "192.0.2.1"},
		{name: "trusted proxy forwards", trusted: trusted, remote: "10.0.0.2:443", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "rightmost untrusted hop wins", trusted: trusted, remote: "10.0.0.2:443", xff: "198.51.100.9, 203.0.113.7, 10.0.0.3", want: "203.0.113.7"},
		{name: "all hops trusted", trusted: trusted, remote: "10.0.0.2:443", xff: "10.0.0.9", want: "10.0.0.2"},
		{name: "garbage hop stops walk", trusted: trusted, remote: "10.0.0.2:443", xff: "203.0.113.7, junk", want: "10.0.0.2"},
		{name: "trusted proxy real ip", trusted: trusted, remote: "10.0.0.2:443", realIP: "203.0.113.8", want: "203.0.113.8"},
		{name: "no port", remote: "192.0.2.1", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := tt.trusted.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithClientIP(t *testing.T) {
	var got string
	h := WithClientIP(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIPFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if got != "192.0.2.1" {
		t.Errorf("context ip = %q, want 192.0.2.1", got)
	}
}
