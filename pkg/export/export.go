// Package export renders schedules for people: console tables, WhatsApp
// messages, PDF, iCalendar, Excel and JSON.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// Format is an output format name accepted by Write
type Format string

const (
	FormatText     Format = "text"
	FormatWhatsApp Format = "whatsapp"
	FormatPDF      Format = "pdf"
	FormatICS      Format = "ics"
	FormatXLSX     Format = "xlsx"
	FormatJSON     Format = "json"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatWhatsApp, FormatPDF, FormatICS, FormatXLSX, FormatJSON}

// ParseFormat resolves a format name or file extension
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	switch name {
	case "txt":
		return FormatText, nil
	case "ical":
		return FormatICS, nil
	}
	for _, format := range Formats {
		if string(format) == name {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension of the format, without the dot
func (f Format) Extension() string {
	if f == FormatText || f == FormatWhatsApp {
		return "txt"
	}
	return string(f)
}

// Options controls how a schedule is rendered
type Options struct {
	// Title heads PDF, WhatsApp and console output
	Title string

	// UnassignedLabel replaces the UNASSIGNED sentinel in rendered output
	UnassignedLabel string

	// Roles orders and names the columns of grid views; derived from the
	// schedule when empty
	Roles []model.RoleDefinition

	Calendar CalendarOptions
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Title:           "Escala PibShift",
		UnassignedLabel: "Não designado",
		Calendar:        DefaultCalendarOptions(),
	}
}

// displayName renders an assignee for people
func (o Options) displayName(id model.Identity) string {
	if id.IsUnassigned() || id == "" {
		return o.UnassignedLabel
	}
	return string(id)
}

// Row is one flat line of a rendered schedule
type Row struct {
	Date       string
	Role       string
	Volunteer  string
	Unassigned bool
}

// Rows flattens a schedule into Data / Função / Voluntário rows
func Rows(schedule *model.Schedule, opts Options) []Row {
	rows := make([]Row, 0, len(schedule.Slots))
	for _, slot := range schedule.Slots {
		role := slot.RoleDisplay
		if role == "" {
			role = slot.RoleKey
		}
		rows = append(rows, Row{
			Date:       slot.Date,
			Role:       role,
			Volunteer:  opts.displayName(slot.Assignee),
			Unassigned: slot.Assignee.IsUnassigned() || slot.Assignee == "",
		})
	}
	return rows
}

// scheduleDates returns the schedule's dates, falling back to the order in
// which dates first appear in its slots
func scheduleDates(schedule *model.Schedule) []string {
	if len(schedule.Dates) > 0 {
		return schedule.Dates
	}
	var dates []string
	seen := make(map[string]bool)
	for _, slot := range schedule.Slots {
		if !seen[slot.Date] {
			seen[slot.Date] = true
			dates = append(dates, slot.Date)
		}
	}
	return dates
}

// Write renders the schedule in the given format
func Write(w io.Writer, format Format, schedule *model.Schedule, opts Options) error {
	switch format {
	case FormatText:
		return WriteText(w, schedule, opts)
	case FormatWhatsApp:
		_, err := io.WriteString(w, WhatsApp(schedule, opts))
		return err
	case FormatPDF:
		return WritePDF(w, schedule, opts)
	case FormatICS:
		return WriteICS(w, schedule, opts)
	case FormatXLSX:
		return WriteXLSX(w, schedule, opts)
	case FormatJSON:
		return WriteJSON(w, schedule)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
