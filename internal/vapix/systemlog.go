package vapix

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const systemLogPath = "/axis-cgi/systemlog.cgi"

// SystemLog reads the device's system log. How much is logged is set in the
// Log.System parameter group.
type SystemLog struct {
	client *Client
}

// SystemLog returns the system log API. It is not advertised through API
// discovery; every firmware generation serves it.
func (c *Client) SystemLog() *SystemLog {
	return &SystemLog{client: c}
}

// LogLevel is a syslog severity, plus the "message repeated" marker older
// firmware writes.
type LogLevel int

const (
	LevelEmergency LogLevel = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
	LevelRepeated
)

var levelNames = [...]string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug", "repeated"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// ParseLogLevel accepts the names String returns.
func ParseLogLevel(s string) (LogLevel, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return LogLevel(i), true
		}
	}
	return 0, false
}

// LogSource is the program that wrote an entry. PID is 0 when not logged.
type LogSource struct {
	Name string
	PID  int
}

func (s LogSource) String() string {
	if s.PID == 0 {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.PID) + "]"
}

// LogEntry is one parsed log line.
type LogEntry struct {
	Time time.Time

	// Zoned is true when the device logged a full timestamp with offset.
	// Otherwise Time is the device's wall clock, in UTC, with the year
	// inferred from the entries after it.
	Zoned bool

	Hostname string
	Level    LogLevel
	Source   LogSource // zero when the line names no program
	Message  string
}

// LogEntries is a parsed system log in the order the device wrote it.
type LogEntries struct {
	// GeneratedAt is the response's Date header, or the local time when
	// the device sent none
	GeneratedAt time.Time

	Entries []LogEntry

	// Unparsed holds lines in neither known format
	Unparsed []string
}

// Entries fetches and parses the whole log.
func (s *SystemLog) Entries(ctx context.Context) (*LogEntries, error) {
	resp, err := s.client.Do(ctx, Call{
		Method: http.MethodGet,
		Path:   systemLogPath,
		Accept: ContentTypeText,
	})
	if err != nil {
		return nil, mapNotFoundToUnsupported(err, "system log")
	}

	generatedAt, err := http.ParseTime(resp.Header.Get("Date"))
	if err != nil {
		generatedAt = time.Now()
	}
	return ParseSystemLog(string(resp.Body), generatedAt), nil
}

// ParseSystemLog parses a systemlog.cgi body. Older firmware logs
//
//	<INFO    > Oct  9 15:41:26 axis-00408cfb6888 syslogd[23459]: restart.
//
// without a year, which is inferred from the next entry's timestamp, or from
// generatedAt for the newest one. Newer firmware logs
//
//	2020-10-09T10:30:02.425-05:00 axis-accc8ef7d108 [ INFO    ] systemd[1]: Started.
func ParseSystemLog(body string, generatedAt time.Time) *LogEntries {
	lines := strings.Split(body, "\n")
	out := &LogEntries{GeneratedAt: generatedAt}

	// Newest entries are last; walk backwards so each yearless timestamp
	// can be placed relative to the one after it.
	var (
		entries []LogEntry
		unknown []string
		next    LogEntry
	)
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSuffix(lines[i], "\r")
		if line == "" || (strings.HasPrefix(line, "----- ") && strings.HasSuffix(line, " -----")) {
			continue
		}

		entry, ok := parseLogLine(line)
		if !ok {
			unknown = append(unknown, line)
			continue
		}
		if !entry.Zoned {
			ref := generatedAt.UTC()
			if len(entries) > 0 && !next.Zoned {
				ref = next.Time
			}
			entry.Time = placeInYear(entry.Time, ref)
		}
		entries = append(entries, entry)
		next = entry
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	for i, j := 0, len(unknown)-1; i < j; i, j = i+1, j-1 {
		unknown[i], unknown[j] = unknown[j], unknown[i]
	}
	out.Entries = entries
	out.Unparsed = unknown
	return out
}

var oldLevels = map[string]LogLevel{
	"<EMERG   > ": LevelEmergency,
	"<ALERT   > ": LevelAlert,
	"<CRITICAL> ": LevelCritical,
	"<ERR     > ": LevelError,
	"<WARNING > ": LevelWarning,
	"<NOTICE  > ": LevelNotice,
	"<INFO    > ": LevelInfo,
	"<DEBUG   > ": LevelDebug,
	"<REPEATED> ": LevelRepeated,
}

var newLevels = map[string]LogLevel{
	"[ EMERG   ] ": LevelEmergency,
	"[ ALERT   ] ": LevelAlert,
	"[ CRIT    ] ": LevelCritical,
	"[ ERR     ] ": LevelError,
	"[ WARNING ] ": LevelWarning,
	"[ NOTICE  ] ": LevelNotice,
	"[ INFO    ] ": LevelInfo,
	"[ DEBUG   ] ": LevelDebug,
}

func parseLogLine(line string) (LogEntry, bool) {
	if e, ok := parseOldLogLine(line); ok {
		return e, true
	}
	return parseNewLogLine(line)
}

// parseOldLogLine reads "<LEVEL   > Mmm dd hh:mm:ss host rest". The
// timestamp is returned in year 0 for placeInYear to fix.
func parseOldLogLine(line string) (LogEntry, bool) {
	if len(line) < 30 || line[26] != ' ' {
		return LogEntry{}, false
	}
	level, ok := oldLevels[line[:11]]
	if !ok {
		return LogEntry{}, false
	}
	ts, ok := parseClock("Jan _2 15:04:05", line[11:26])
	if !ok {
		return LogEntry{}, false
	}
	host, rest, ok := strings.Cut(line[27:], " ")
	if !ok {
		return LogEntry{}, false
	}

	source, message := splitSource(rest)
	return LogEntry{Time: ts, Hostname: host, Level: level, Source: source, Message: message}, true
}

// parseNewLogLine reads "RFC3339-millis host [ LEVEL   ] rest".
func parseNewLogLine(line string) (LogEntry, bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return LogEntry{}, false
	}
	ts, ok := parseClock("2006-01-02T15:04:05.000Z07:00", parts[0])
	if !ok {
		return LogEntry{}, false
	}
	rest := parts[2]
	if len(rest) < 13 {
		return LogEntry{}, false
	}
	level, ok := newLevels[rest[:12]]
	if !ok {
		return LogEntry{}, false
	}

	source, message := splitSource(rest[12:])
	return LogEntry{Time: ts, Zoned: true, Hostname: parts[1], Level: level, Source: source, Message: message}, true
}

// parseClock is time.Parse that also accepts a leap second ":60".
func parseClock(layout, value string) (time.Time, bool) {
	leap := false
	if i := strings.Index(value, ":60"); i >= 0 {
		if end := i + 3; end == len(value) || strings.IndexByte(".Z+-", value[end]) >= 0 {
			value = value[:i] + ":59" + value[end:]
			leap = true
		}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	if leap {
		t = t.Add(time.Second)
	}
	return t, true
}

// splitSource splits "name[pid]: message" or "name: message". A prefix that
// is not a plausible source stays part of the message.
func splitSource(rest string) (LogSource, string) {
	prefix, message, ok := strings.Cut(rest, ": ")
	if !ok || prefix == "" {
		return LogSource{}, rest
	}

	open := strings.IndexByte(prefix, '[')
	if open < 0 || !strings.HasSuffix(prefix, "]") {
		return LogSource{Name: prefix}, message
	}
	pid, err := strconv.ParseUint(prefix[open+1:len(prefix)-1], 10, 32)
	if err != nil {
		return LogSource{}, rest
	}
	return LogSource{Name: prefix[:open], PID: int(pid)}, message
}

const halfYear = 180 * 24 * time.Hour

// placeInYear sets the year of a yearless timestamp to whichever of ref's
// year or its neighbours puts it closest to ref. Dates that do not exist in
// a candidate year (29 February) skip that year.
func placeInYear(ts, ref time.Time) time.Time {
	var (
		best     time.Time
		bestDiff time.Duration = -1
	)
	for _, year := range []int{ref.Year(), ref.Year() - 1, ref.Year() + 1} {
		t := time.Date(year, ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
		if t.Month() != ts.Month() {
			continue
		}
		diff := t.Sub(ref)
		if diff < 0 {
			diff = -diff
		}
		if year == ref.Year() && diff < halfYear {
			return t
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = t, diff
		}
	}
	return best
}
