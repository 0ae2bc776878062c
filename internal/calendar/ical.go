// Package calendar imports external iCal feeds into reservations and
// publishes a tenant's schedule as an iCal feed.
package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/rentalsync/backend/internal/storage/models"
)

// DefaultEventTitle is used for feed entries without a SUMMARY.
const DefaultEventTitle = "External booking"

const maxFeedSize = 10 << 20

var (
	// ErrFeedStatus is returned when the feed host answers outside 2xx.
	ErrFeedStatus = errors.New("calendar feed returned a non-success status")

	// ErrMalformedFeed is returned when the body is not an iCal document.
	ErrMalformedFeed = errors.New("malformed calendar feed")
)

// Parser downloads and parses iCal/ICS feeds.
type Parser struct {
	httpClient *http.Client
}

// NewParser creates a parser whose requests are bounded by timeout.
func NewParser(timeout time.Duration) *Parser {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Parser{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAndParse downloads and parses an iCal feed from a URL.
func (p *Parser) FetchAndParse(ctx context.Context, url string) ([]models.SourceEvent, error) {
	body, err := p.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(body))
}

// Fetch downloads the raw feed document.
func (p *Parser) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	return body, nil
}

// Parse reads an iCal document and returns its VEVENTs as SourceEvents.
// Entries without a usable DTSTART are logged and left out.
func Parse(r io.Reader) ([]models.SourceEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	if !bytes.Contains(data, []byte("BEGIN:VCALENDAR")) {
		return nil, ErrMalformedFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	events := make([]models.SourceEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := sourceEvent(ve)
		if err != nil {
			log.Printf("Skipping unreadable calendar entry: %v", err)
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func sourceEvent(ve *ical.VEvent) (models.SourceEvent, error) {
	var ev models.SourceEvent

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil || strings.TrimSpace(startProp.Value) == "" {
		return ev, errors.New("missing DTSTART")
	}

	ev.AllDay = isDateValue(startProp)
	if ev.AllDay {
		start, err := parseDate(startProp.Value)
		if err != nil {
			return ev, fmt.Errorf("parsing DTSTART: %w", err)
		}
		ev.Start = start
		ev.End = start.AddDate(0, 0, 1)
		if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil && endProp.Value != "" {
			end, err := parseDate(endProp.Value)
			if err != nil {
				return ev, fmt.Errorf("parsing DTEND: %w", err)
			}
			ev.End = end
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("parsing DTSTART: %w", err)
		}
		ev.Start = start
		ev.End = start
		if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil && endProp.Value != "" {
			end, err := ve.GetEndAt()
			if err != nil {
				return ev, fmt.Errorf("parsing DTEND: %w", err)
			}
			ev.End = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = strings.TrimSpace(p.Value)
	}
	if ev.Title == "" {
		ev.Title = DefaultEventTitle
	}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.UID = strings.TrimSpace(p.Value)
	}
	if ev.UID == "" {
		ev.UID = fallbackUID(ev)
	}

	return ev, nil
}

// isDateValue reports whether a DTSTART/DTEND holds a date without time,
// either by VALUE=DATE or by its bare YYYYMMDD form.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("20060102", strings.TrimSpace(value))
}

// fallbackUID derives a stable identifier for entries that carry no UID.
func fallbackUID(ev models.SourceEvent) string {
	sum := sha256.Sum256([]byte(ev.Start.UTC().Format(time.RFC3339) + "|" + ev.End.UTC().Format(time.RFC3339) + "|" + ev.Title))
	return "generated-" + hex.EncodeToString(sum[:8])
}
