package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(events ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Airbnb Inc//Hosting Calendar//EN\r\n" +
		strings.Join(events, "") +
		"END:VCALENDAR\r\n"
}

const allDayEvent = "BEGIN:VEVENT\r\n" +
	"UID:x1\r\n" +
	"DTSTART;VALUE=DATE:20260301\r\n" +
	"DTEND;VALUE=DATE:20260305\r\n" +
	"SUMMARY:J. Doe\r\n" +
	"END:VEVENT\r\n"

func TestParse_AllDayEvent(t *testing.T) {
	events, err := Parse(strings.NewReader(feed(allDayEvent)))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "x1", ev.UID)
	assert.Equal(t, "J. Doe", ev.Title)
	assert.True(t, ev.AllDay)
	assert.Equal(t, day("2026-03-01"), ev.Start)
	assert.Equal(t, day("2026-03-05"), ev.End)
}

func TestParse_TimedEvent(t *testing.T) {
	events, err := Parse(strings.NewReader(feed("BEGIN:VEVENT\r\n" +
		"UID:t1\r\n" +
		"DTSTART:20260310T150000Z\r\n" +
		"DTEND:20260312T100000Z\r\n" +
		"SUMMARY:Reserved\r\n" +
		"END:VEVENT\r\n")))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.False(t, ev.AllDay)
	assert.True(t, ev.Start.Equal(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)))
	assert.True(t, ev.End.Equal(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)))
}

func TestParse_Fallbacks(t *testing.T) {
	noSummary := "BEGIN:VEVENT\r\n" +
		"DTSTART;VALUE=DATE:20260401\r\n" +
		"END:VEVENT\r\n"

	events, err := Parse(strings.NewReader(feed(noSummary)))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, DefaultEventTitle, ev.Title)
	assert.Equal(t, day("2026-04-02"), ev.End, "all-day entry without DTEND lasts one day")
	assert.True(t, strings.HasPrefix(ev.UID, "generated-"))

	again, err := Parse(strings.NewReader(feed(noSummary)))
	require.NoError(t, err)
	assert.Equal(t, ev.UID, again[0].UID, "generated UID is stable")
}

func TestParse_SkipsEntriesWithoutStart(t *testing.T) {
	events, err := Parse(strings.NewReader(feed(
		"BEGIN:VEVENT\r\nUID:broken\r\nSUMMARY:No dates\r\nEND:VEVENT\r\n",
		allDayEvent,
	)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "x1", events[0].UID)
}

func TestParse_UnescapesText(t *testing.T) {
	events, err := Parse(strings.NewReader(feed("BEGIN:VEVENT\r\n" +
		"UID:e1\r\n" +
		"DTSTART;VALUE=DATE:20260301\r\n" +
		"DTEND;VALUE=DATE:20260302\r\n" +
		"SUMMARY:" + `Smith\, Anna\; family` + "\r\n" +
		"END:VEVENT\r\n")))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Smith, Anna; family", events[0].Title)
}

func TestParse_KeepsEscapedBackslashes(t *testing.T) {
	events, err := Parse(strings.NewReader(feed("BEGIN:VEVENT\r\n" +
		"UID:" + `share\\new\, 1` + "\r\n" +
		"DTSTART;VALUE=DATE:20260301\r\n" +
		"DTEND;VALUE=DATE:20260302\r\n" +
		"SUMMARY:" + `C:\\new\, x` + "\r\n" +
		"END:VEVENT\r\n")))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, `C:\new, x`, events[0].Title)
	assert.Equal(t, `share\new, 1`, events[0].UID)
	assert.NotContains(t, events[0].Title, "\n")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<html>Not found</html>"))
	assert.True(t, errors.Is(err, ErrMalformedFeed))
}

func TestParser_FetchAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feed(allDayEvent)))
	}))
	defer srv.Close()

	p := NewParser(5 * time.Second)

	events, err := p.FetchAndParse(context.Background(), srv.URL+"/unit.ics")
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = p.FetchAndParse(context.Background(), srv.URL+"/missing.ics")
	assert.True(t, errors.Is(err, ErrFeedStatus))
}

func TestParser_FetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewParser(50 * time.Millisecond)
	_, err := p.FetchAndParse(context.Background(), srv.URL)
	assert.Error(t, err)
}
