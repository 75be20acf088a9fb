package vapix

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/vapix/internal/transport"
)

func TestParseSystemLog_OldFormat(t *testing.T) {
	body := "----- Log started -----\r\n" +
		"<INFO    > Oct  9 15:41:26 axis-00408cfb6888 syslogd[23459]: 1.4.1: restart.\r\n" +
		"<CRITICAL> Nov 14 06:07:54 axis-00408cb99b33 kernel: CIFS VFS: Send error in SessSetup = -13\r\n" +
		"<REPEATED> Nov 14 06:08:29 axis-00408cb99b33 last CRITICAL  message repeated 4 times\r\n" +
		"\r\n"
	generatedAt := time.Date(2020, time.November, 14, 7, 0, 0, 0, time.UTC)

	log := ParseSystemLog(body, generatedAt)
	if len(log.Unparsed) != 0 {
		t.Errorf("Unparsed = %q", log.Unparsed)
	}
	if len(log.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(log.Entries))
	}

	tests := []struct {
		want LogEntry
	}{
		{LogEntry{
			Time:     time.Date(2020, time.October, 9, 15, 41, 26, 0, time.UTC),
			Hostname: "axis-00408cfb6888",
			Level:    LevelInfo,
			Source:   LogSource{Name: "syslogd", PID: 23459},
			Message:  "1.4.1: restart.",
		}},
		{LogEntry{
			Time:     time.Date(2020, time.November, 14, 6, 7, 54, 0, time.UTC),
			Hostname: "axis-00408cb99b33",
			Level:    LevelCritical,
			Source:   LogSource{Name: "kernel"},
			Message:  "CIFS VFS: Send error in SessSetup = -13",
		}},
		{LogEntry{
			Time:     time.Date(2020, time.November, 14, 6, 8, 29, 0, time.UTC),
			Hostname: "axis-00408cb99b33",
			Level:    LevelRepeated,
			Message:  "last CRITICAL  message repeated 4 times",
		}},
	}
	for i, tt := range tests {
		got := log.Entries[i]
		if !got.Time.Equal(tt.want.Time) || got.Zoned {
			t.Errorf("entries[%d].Time = %v (zoned %v), want %v", i, got.Time, got.Zoned, tt.want.Time)
		}
		got.Time = tt.want.Time
		if got != tt.want {
			t.Errorf("entries[%d] = %+v, want %+v", i, got, tt.want)
		}
	}
}

func TestParseSystemLog_NewFormat(t *testing.T) {
	body := "2020-10-08T22:16:11.027-05:00 axis-accc8ef7d108 [ WARNING ] [    5.501068][    T1] systemd[1]: /usr/lib/tmpfiles.d/x.conf:1: ignoring.\n" +
		"2020-10-08T22:16:12.113-05:00 axis-accc8ef7d108 [ WARNING ] kernel: [    7.050105][  T126] artpec_5: module license 'Proprietary' taints kernel.\n" +
		"2020-10-09T10:30:02.425-05:00 axis-accc8ef7d108 [ INFO    ] systemd[1]: Started Rotate log files.\n"

	log := ParseSystemLog(body, time.Now())
	if len(log.Entries) != 3 {
		t.Fatalf("got %d entries, want 3 (unparsed %q)", len(log.Entries), log.Unparsed)
	}

	first := log.Entries[0]
	if first.Source != (LogSource{}) {
		t.Errorf("entries[0].Source = %+v, want none", first.Source)
	}
	if first.Message != "[    5.501068][    T1] systemd[1]: /usr/lib/tmpfiles.d/x.conf:1: ignoring." {
		t.Errorf("entries[0].Message = %q", first.Message)
	}

	kernel := log.Entries[1]
	if kernel.Source != (LogSource{Name: "kernel"}) || kernel.Level != LevelWarning {
		t.Errorf("entries[1] = %+v", kernel)
	}

	last := log.Entries[2]
	if !last.Zoned || last.Hostname != "axis-accc8ef7d108" || last.Level != LevelInfo {
		t.Errorf("entries[2] = %+v", last)
	}
	if last.Source != (LogSource{Name: "systemd", PID: 1}) || last.Message != "Started Rotate log files." {
		t.Errorf("entries[2] source/message = %v %q", last.Source, last.Message)
	}
	want := time.Date(2020, time.October, 9, 15, 30, 2, 425_000_000, time.UTC)
	if !last.Time.Equal(want) {
		t.Errorf("entries[2].Time = %v, want %v", last.Time, want)
	}
	if _, offset := last.Time.Zone(); offset != -5*3600 {
		t.Errorf("offset = %d, want -18000", offset)
	}
}

func TestParseSystemLog_YearInference(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		generatedAt time.Time
		want        []time.Time
	}{
		{
			name: "new year",
			body: "<INFO    > Dec 31 23:59:59 cam a: one\n" +
				"<INFO    > Jan  1 00:00:05 cam a: two\n",
			generatedAt: time.Date(2021, time.January, 1, 1, 0, 0, 0, time.UTC),
			want: []time.Time{
				time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC),
				time.Date(2021, time.January, 1, 0, 0, 5, 0, time.UTC),
			},
		},
		{
			name:        "clock behind",
			body:        "<INFO    > Jan  2 10:00:00 cam a: one\n",
			generatedAt: time.Date(2020, time.December, 30, 0, 0, 0, 0, time.UTC),
			want:        []time.Time{time.Date(2021, time.January, 2, 10, 0, 0, 0, time.UTC)},
		},
		{
			name:        "leap day",
			body:        "<INFO    > Feb 29 12:00:00 cam a: one\n",
			generatedAt: time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
			want:        []time.Time{time.Date(2020, time.February, 29, 12, 0, 0, 0, time.UTC)},
		},
		{
			name:        "leap second",
			body:        "2016-12-31T23:59:60.000Z cam [ INFO    ] ntpd: leap\n",
			generatedAt: time.Now(),
			want:        []time.Time{time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := ParseSystemLog(tt.body, tt.generatedAt)
			if len(log.Entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d (unparsed %q)", len(log.Entries), len(tt.want), log.Unparsed)
			}
			for i, want := range tt.want {
				if got := log.Entries[i].Time; !got.Equal(want) {
					t.Errorf("entries[%d].Time = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestParseSystemLog_Unparsed(t *testing.T) {
	body := "<INFO    > Oct  9 15:41:26 cam a: ok\n" +
		"garbage line\n" +
		"<BOGUS   > Oct  9 15:41:27 cam a: unknown level\n" +
		"sshd[x]: not a pid\n"

	log := ParseSystemLog(body, time.Now())
	if len(log.Entries) != 1 {
		t.Errorf("got %d entries, want 1", len(log.Entries))
	}
	want := []string{"garbage line", "<BOGUS   > Oct  9 15:41:27 cam a: unknown level", "sshd[x]: not a pid"}
	if len(log.Unparsed) != len(want) {
		t.Fatalf("Unparsed = %q", log.Unparsed)
	}
	for i := range want {
		if log.Unparsed[i] != want[i] {
			t.Errorf("Unparsed[%d] = %q, want %q", i, log.Unparsed[i], want[i])
		}
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct {
		rest    string
		source  LogSource
		message string
	}{
		{"syslogd[23459]: restart.", LogSource{Name: "syslogd", PID: 23459}, "restart."},
		{"kernel: oops", LogSource{Name: "kernel"}, "oops"},
		{"sshd[abc]: bad pid", LogSource{}, "sshd[abc]: bad pid"},
		{"no colon here", LogSource{}, "no colon here"},
		{": empty source", LogSource{}, ": empty source"},
	}
	for _, tt := range tests {
		source, message := splitSource(tt.rest)
		if source != tt.source || message != tt.message {
			t.Errorf("splitSource(%q) = %+v, %q; want %+v, %q", tt.rest, source, message, tt.source, tt.message)
		}
	}
}

func TestLogLevel_String(t *testing.T) {
	for l := LevelEmergency; l <= LevelRepeated; l++ {
		parsed, ok := ParseLogLevel(l.String())
		if !ok || parsed != l {
			t.Errorf("ParseLogLevel(%q) = %v, %v", l.String(), parsed, ok)
		}
	}
	if _, ok := ParseLogLevel("verbose"); ok {
		t.Error("ParseLogLevel(verbose) succeeded")
	}
	if got := LogLevel(42).String(); got != "level(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestSystemLog_Entries(t *testing.T) {
	c, dev := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		resp := respond(200, "text/plain", "<INFO    > Dec 31 23:00:00 cam a: old\n")
		resp.Header.Set("Date", "Fri, 01 Jan 2021 00:30:00 GMT")
		return resp, nil
	})

	log, err := c.SystemLog().Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if got := dev.requests[0].RequestURI(); got != "/axis-cgi/systemlog.cgi" {
		t.Errorf("RequestURI = %s", got)
	}
	if !log.GeneratedAt.Equal(time.Date(2021, time.January, 1, 0, 30, 0, 0, time.UTC)) {
		t.Errorf("GeneratedAt = %v", log.GeneratedAt)
	}
	if len(log.Entries) != 1 || log.Entries[0].Time.Year() != 2020 {
		t.Errorf("Entries = %+v", log.Entries)
	}
}

func TestSystemLog_EntriesNotFound(t *testing.T) {
	c, _ := newStubClient(t, func(req *transport.Request) (*transport.Response, error) {
		return respond(404, "text/html", "<h1>Not Found</h1>"), nil
	})

	_, err := c.SystemLog().Entries(context.Background())
	if !IsUnsupported(err) {
		t.Errorf("Entries() error = %v, want unsupported", err)
	}
}
