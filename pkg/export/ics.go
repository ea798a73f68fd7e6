package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// ErrNoEvents is returned when no slot of the schedule could become an event
var ErrNoEvents = errors.New("no valid events to export")

// CalendarOptions controls iCalendar event times
type CalendarOptions struct {
	// Location the service times are in (default local time)
	Location *time.Location

	// Year for labels without one (0 means the current year)
	Year int

	// DefaultStart and DefaultEnd are HH:MM service times
	DefaultStart string
	DefaultEnd   string

	// EventPrefix starts every event summary ("PibShift - Filmagem")
	EventPrefix string

	// Now and NewUID are replaced in tests
	Now    func() time.Time
	NewUID func() string
}

// DefaultCalendarOptions returns evening services from 19:00 to 22:00
func DefaultCalendarOptions() CalendarOptions {
	return CalendarOptions{
		DefaultStart: "19:00",
		DefaultEnd:   "22:00",
		EventPrefix:  "PibShift",
	}
}

// overrideDuration is used when a label carries its own start time
const overrideDuration = 3 * time.Hour

var (
	labelDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})(?:/(\d{4}))?`)
	labelTimePattern = regexp.MustCompile(`\b([01]?\d|2[0-3])(?::([0-5]\d)|[hH]([0-5]\d)?)`)
	clockPattern     = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

func parseClock(value string) (int, int, error) {
	match := clockPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	return hour, minute, nil
}

// eventTimes works out when the service of a date label starts and ends.
// Returns false for labels without a valid day and month.
func (o CalendarOptions) eventTimes(label string, now time.Time) (time.Time, time.Time, bool, error) {
	loc := labelDatePattern.FindStringSubmatchIndex(label)
	if loc == nil {
		return time.Time{}, time.Time{}, false, nil
	}

	day, _ := strconv.Atoi(label[loc[2]:loc[3]])
	month, _ := strconv.Atoi(label[loc[4]:loc[5]])
	year := o.Year
	if loc[6] != -1 {
		year, _ = strconv.Atoi(label[loc[6]:loc[7]])
	}
	if year == 0 {
		year = now.Year()
	}

	location := o.Location
	if location == nil {
		location = time.Local
	}

	startHour, startMinute, err := parseClock(o.DefaultStart)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	endHour, endMinute, err := parseClock(o.DefaultEnd)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	start := time.Date(year, time.Month(month), day, startHour, startMinute, 0, 0, location)
	if start.Day() != day || int(start.Month()) != month {
		return time.Time{}, time.Time{}, false, nil
	}
	end := time.Date(year, time.Month(month), day, endHour, endMinute, 0, 0, location)

	// Look for a time outside the date so "04/06" is never read as one
	timeMatch := labelTimePattern.FindStringSubmatch(label[loc[1]:])
	if timeMatch == nil {
		timeMatch = labelTimePattern.FindStringSubmatch(label[:loc[0]])
	}
	if timeMatch != nil {
		start, end = overrideStart(start, timeMatch)
	}

	return start, end, true, nil
}

func overrideStart(date time.Time, match []string) (time.Time, time.Time) {
	hour, _ := strconv.Atoi(match[1])
	minute := 0
	if match[2] != "" {
		minute, _ = strconv.Atoi(match[2])
	} else if match[3] != "" {
		minute, _ = strconv.Atoi(match[3])
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
	return start, start.Add(overrideDuration)
}

// WriteICS writes one calendar event per filled slot
func WriteICS(w io.Writer, schedule *model.Schedule, opts Options) error {
	calOpts := opts.Calendar
	now := time.Now()
	if calOpts.Now != nil {
		now = calOpts.Now()
	}
	newUID := calOpts.NewUID
	if newUID == nil {
		newUID = uuid.NewString
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//PibShift//Escala//PT")
	if calOpts.Location != nil {
		cal.SetXWRTimezone(calOpts.Location.String())
	}

	events := 0
	for _, row := range Rows(schedule, opts) {
		if row.Unassigned {
			continue
		}

		start, end, ok, err := calOpts.eventTimes(row.Date, now)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		event := cal.AddEvent(newUID() + "@pibshift")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s - %s", calOpts.EventPrefix, row.Role))
		event.SetDescription(fmt.Sprintf("Voluntário: %s", row.Volunteer))
		events++
	}

	if events == 0 {
		return ErrNoEvents
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
