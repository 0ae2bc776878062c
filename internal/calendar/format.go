package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

const (
	dateTimeFormat = "20060102T150405Z"
	dateFormat     = "20060102"

	productID    = "-//RentalSync//Calendar Feed//EN"
	calendarName = "RentalSync Planning"
	uidDomain    = "rentalsync.app"

	missionDuration = time.Hour
)

// writeCalendar serializes missions and reservations into one VCALENDAR.
// stamp is written as the DTSTAMP of every event.
func writeCalendar(missions []models.Mission, reservations []models.Reservation, stamp time.Time) string {
	var builder strings.Builder

	builder.WriteString("BEGIN:VCALENDAR\r\n")
	builder.WriteString("VERSION:2.0\r\n")
	builder.WriteString("PRODID:" + productID + "\r\n")
	builder.WriteString("CALSCALE:GREGORIAN\r\n")
	builder.WriteString("METHOD:PUBLISH\r\n")
	builder.WriteString("X-WR-CALNAME:" + escapeText(calendarName) + "\r\n")
	builder.WriteString("X-WR-TIMEZONE:UTC\r\n")

	for i := range missions {
		writeMission(&builder, &missions[i], stamp)
	}
	for i := range reservations {
		writeReservation(&builder, &reservations[i], stamp)
	}

	builder.WriteString("END:VCALENDAR\r\n")

	return builder.String()
}

func writeMission(builder *strings.Builder, m *models.Mission, stamp time.Time) {
	label := m.TypeLabel()
	status := "CONFIRMED"
	if m.Status == models.MissionInProgress {
		status = "TENTATIVE"
	}

	builder.WriteString("BEGIN:VEVENT\r\n")
	builder.WriteString(fmt.Sprintf("UID:%s\r\n", eventUID("mission", m.ID)))
	builder.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatDateTime(stamp)))
	builder.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatDateTime(m.ScheduledAt)))
	builder.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatDateTime(m.ScheduledAt.Add(missionDuration))))
	builder.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeText(label+" - "+m.HousingUnitName)))
	if m.Notes != "" {
		builder.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeText(m.Notes)))
	}
	builder.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeText(label)))
	builder.WriteString(fmt.Sprintf("STATUS:%s\r\n", status))
	builder.WriteString("END:VEVENT\r\n")
}

func writeReservation(builder *strings.Builder, r *models.Reservation, stamp time.Time) {
	end := r.CheckOut
	if !end.After(r.CheckIn) {
		end = r.CheckIn.AddDate(0, 0, 1)
	}

	builder.WriteString("BEGIN:VEVENT\r\n")
	builder.WriteString(fmt.Sprintf("UID:%s\r\n", eventUID("reservation", r.ID)))
	builder.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatDateTime(stamp)))
	builder.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatDate(r.CheckIn)))
	builder.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatDate(end)))
	builder.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeText(r.GuestName+" - "+r.HousingUnitName)))
	builder.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeText(reservationDescription(r))))
	builder.WriteString("TRANSP:TRANSPARENT\r\n")
	builder.WriteString("END:VEVENT\r\n")
}

func reservationDescription(r *models.Reservation) string {
	lines := []string{
		fmt.Sprintf("Guests: %d", r.GuestCount),
		fmt.Sprintf("Nights: %d", r.Nights()),
		fmt.Sprintf("Platform: %s", r.Platform),
	}
	if r.Notes != "" {
		lines = append(lines, r.Notes)
	}
	return strings.Join(lines, "\n")
}

func eventUID(kind, id string) string {
	return kind + "-" + id + "@" + uidDomain
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

// escapeText escapes TEXT values. Only backslash, semicolon, comma and
// newline are touched.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}
