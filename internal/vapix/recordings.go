package vapix

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const recordingListPath = "/axis-cgi/record/list.cgi"

// Recordings is the edge storage recording API.
type Recordings struct {
	client *Client

	ContinuousRecording bool // continuous recording with at least one profile
	PlaybackOverRTSP    bool
	Exporting           bool
}

// Recordings checks the device's Properties parameters and returns the
// recording API. Devices without local storage or with an HTTP API older
// than version 3 report ErrUnsupportedFeature.
func (c *Client) Recordings(ctx context.Context) (*Recordings, error) {
	params, err := c.Parameters().List(ctx,
		"Properties.API.HTTP.Version",
		"Properties.LocalStorage",
		"Properties.API.RTSP.Version",
	)
	if err != nil {
		return nil, err
	}

	get := func(name string) string {
		v, _ := params.Lookup(name)
		return v
	}
	if get("Properties.API.HTTP.Version") != "3" || get("Properties.LocalStorage.LocalStorage") != "yes" {
		return nil, NewUnsupportedError("recordings require local storage and HTTP API version 3")
	}

	profiles, _ := strconv.Atoi(get("Properties.LocalStorage.ContinuousRecordingProfiles"))
	rtsp := get("Properties.API.RTSP.Version")
	return &Recordings{
		client:              c,
		ContinuousRecording: get("Properties.LocalStorage.ContinuousRecording") == "yes" && profiles > 0,
		PlaybackOverRTSP:    rtsp != "" && rtsp >= "2.01",
		Exporting:           get("Properties.LocalStorage.ExportRecording") == "yes",
	}, nil
}

// RecordingSort orders List results by start time.
type RecordingSort int

const (
	LatestFirst RecordingSort = iota
	EarliestFirst
)

// ListRecordingsOptions narrows List. Zero values mean no restriction.
type ListRecordingsOptions struct {
	RecordingID string
	EventID     string
	DiskID      string

	// Source is a video channel number or "Quad"
	Source string

	// Recordings overlapping [Start, Stop] are returned
	Start time.Time
	Stop  time.Time

	MaxResults int
	Offset     int
	Sort       RecordingSort
}

func (o ListRecordingsOptions) query() url.Values {
	q := url.Values{"listentity": {"recording"}}
	if o.RecordingID != "" {
		q.Set("recordingid", o.RecordingID)
	}
	if o.EventID != "" {
		q.Set("eventid", o.EventID)
	}
	if o.DiskID != "" {
		q.Set("diskid", o.DiskID)
	}
	if o.Source != "" {
		q.Set("source", o.Source)
	}
	if !o.Start.IsZero() {
		q.Set("starttime", o.Start.UTC().Format(time.RFC3339))
	}
	if !o.Stop.IsZero() {
		q.Set("stoptime", o.Stop.UTC().Format(time.RFC3339))
	}
	if o.MaxResults > 0 {
		q.Set("maxnumberofresults", strconv.Itoa(o.MaxResults))
	}
	if o.Offset > 0 {
		q.Set("startatresultnumber", strconv.Itoa(o.Offset))
	}
	if o.Sort == EarliestFirst {
		q.Set("sortorder", "ascending")
	} else {
		q.Set("sortorder", "descending")
	}
	return q
}

// Timestamp is an RFC 3339 attribute. An empty attribute is the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalXMLAttr(attr xml.Attr) error {
	value := strings.TrimSpace(attr.Value)
	if value == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
	}
	t.Time = parsed
	return nil
}

// FrameRate is a "numerator:denominator" frame rate.
type FrameRate struct {
	Num, Den int
}

func (f *FrameRate) UnmarshalXMLAttr(attr xml.Attr) error {
	num, den, ok := strings.Cut(attr.Value, ":")
	if !ok {
		den = "1"
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return fmt.Errorf("attribute %s: bad frame rate %q", attr.Name.Local, attr.Value)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d <= 0 {
		return fmt.Errorf("attribute %s: bad frame rate %q", attr.Name.Local, attr.Value)
	}
	f.Num, f.Den = n, d
	return nil
}

// FPS returns the rate as frames per second.
func (f FrameRate) FPS() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

type RecordingVideo struct {
	MimeType  string    `xml:"mimetype,attr"`
	Width     int       `xml:"width,attr"`
	Height    int       `xml:"height,attr"`
	FrameRate FrameRate `xml:"framerate,attr"`
}

type RecordingAudio struct {
	MimeType   string `xml:"mimetype,attr"`
	Bitrate    int    `xml:"bitrate,attr"`
	SampleRate int    `xml:"samplerate,attr"`
}

// Recording is one recording on a disk.
type Recording struct {
	DiskID       string          `xml:"diskid,attr"`
	RecordingID  string          `xml:"recordingid,attr"`
	Start        Timestamp       `xml:"starttime,attr"`
	Stop         Timestamp       `xml:"stoptime,attr"` // zero while recording
	Type         string          `xml:"recordingtype,attr"`
	EventTrigger string          `xml:"eventtrigger,attr"`
	EventID      string          `xml:"eventid,attr"`
	Status       string          `xml:"recordingstatus,attr"`
	Source       string          `xml:"source,attr"`
	Video        *RecordingVideo `xml:"video"`
	Audio        *RecordingAudio `xml:"audio"`
}

// Ongoing reports whether the recording has no stop time yet.
func (r Recording) Ongoing() bool {
	return r.Stop.IsZero()
}

// Duration is the recorded length, or the length so far measured against now.
func (r Recording) Duration(now time.Time) time.Duration {
	if r.Ongoing() {
		return now.Sub(r.Start.Time)
	}
	return r.Stop.Sub(r.Start.Time)
}

// RecordingList is one page of List results.
type RecordingList struct {
	Total      int // recordings on the device
	Matched    int // recordings matching the options
	Recordings []Recording
}

// List returns recordings matching opts.
func (r *Recordings) List(ctx context.Context, opts ListRecordingsOptions) (*RecordingList, error) {
	var doc struct {
		Error *struct {
			Code        string `xml:"code,attr"`
			Description string `xml:"description,attr"`
		} `xml:"error"`
		Recordings struct {
			Total     int         `xml:"totalnumberofrecordings,attr"`
			Matched   int         `xml:"numberofrecordings,attr"`
			Recording []Recording `xml:"recording"`
		} `xml:"recordings"`
	}

	if err := r.client.getXML(ctx, recordingListPath, opts.query().Encode(), &doc); err != nil {
		return nil, mapNotFoundToUnsupported(err, "recordings")
	}
	if doc.Error != nil {
		return nil, NewProtocolError(fmt.Sprintf("list.cgi error %s: %s", doc.Error.Code, doc.Error.Description), nil)
	}

	return &RecordingList{
		Total:      doc.Recordings.Total,
		Matched:    doc.Recordings.Matched,
		Recordings: doc.Recordings.Recording,
	}, nil
}
