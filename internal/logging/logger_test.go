package logging

import (
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a nop logger when no level is configured")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	defer SetLogger(nil)

	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !GetLogger().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestRedactHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", `Digest username="root", response="abc"`)
	headers.Set("WWW-Authenticate", `Digest realm="x", nonce="y"`)
	headers.Set("Accept", "text/plain")
	headers.Set("Set-Cookie", "sessionid=0123456789")

	got := RedactHeaders(headers)

	if got["Authorization"] != "<redacted>" {
		t.Errorf("Authorization = %q, want <redacted>", got["Authorization"])
	}
	if got["Www-Authenticate"] != "<redacted>" {
		t.Errorf("Www-Authenticate = %q, want <redacted>", got["Www-Authenticate"])
	}
	if got["Set-Cookie"] != "<redacted>" {
		t.Errorf("Set-Cookie = %q, want <redacted>", got["Set-Cookie"])
	}
	if got["Accept"] != "text/plain" {
		t.Errorf("Accept = %q, want text/plain", got["Accept"])
	}
}

func TestLogExchange(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogExchange("GET", "/axis-cgi/param.cgi?action=list", 200, 5*time.Millisecond)

	entries := logs.FilterMessage("Device exchange").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["uri"] != "/axis-cgi/param.cgi?action=list" {
		t.Errorf("uri = %v", fields["uri"])
	}
	if fields["status"] != int64(200) {
		t.Errorf("status = %v, want 200", fields["status"])
	}
}

func TestDumps(t *testing.T) {
	if got := asciiDump([]byte("OK\r\n")); got != "OK.." {
		t.Errorf("asciiDump = %q, want %q", got, "OK..")
	}
	if got := hexDump([]byte("OK")); got != "4f4b" {
		t.Errorf("hexDump = %q, want 4f4b", got)
	}

	long := make([]byte, maxDumpBytes+10)
	if got := hexDump(long); len(got) != maxDumpBytes*2+3 {
		t.Errorf("hexDump length = %d, want %d", len(got), maxDumpBytes*2+3)
	}
}
