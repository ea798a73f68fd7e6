package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// WriteText writes the schedule as an aligned console table
func WriteText(w io.Writer, schedule *model.Schedule, opts Options) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, opts.Title)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DATA\tFUNÇÃO\tVOLUNTÁRIO")

	previous := ""
	for _, row := range Rows(schedule, opts) {
		date := row.Date
		if date == previous {
			date = ""
		}
		previous = row.Date
		fmt.Fprintf(tw, "%s\t%s\t%s\n", date, row.Role, row.Volunteer)
	}

	return tw.Flush()
}

// WhatsApp formats the schedule as a message ready to paste into a group chat
func WhatsApp(schedule *model.Schedule, opts Options) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s*\n\n", opts.Title))

	if len(schedule.Slots) == 0 {
		sb.WriteString("Nenhuma escala disponível")
		return sb.String()
	}

	rows := Rows(schedule, opts)
	for _, date := range scheduleDates(schedule) {
		sb.WriteString(fmt.Sprintf("📅 *%s*\n", date))
		for _, row := range rows {
			if row.Date != date {
				continue
			}
			emoji := "✅"
			if row.Unassigned {
				emoji = "❌"
			}
			sb.WriteString(fmt.Sprintf("%s *%s:* %s\n", emoji, row.Role, row.Volunteer))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
