package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/okian/tzmeet/internal/domain/types"
)

var (
	headerColor    = color.New(color.Bold)
	perfectColor   = color.New(color.FgGreen)
	sacrificeColor = color.New(color.FgYellow)
	outsideColor   = color.New(color.FgRed)
	offHoursColor  = color.New(color.FgHiBlack)
	bestColor      = color.New(color.FgCyan, color.Bold)
)

func printPlan(w io.Writer, plan types.PlanView) {
	headerColor.Fprintf(w, "Meeting times on %s (%s)\n", plan.Date, plan.ReferenceTimezone)
	if plan.Empty {
		fmt.Fprintln(w, plan.Guidance)
		return
	}

	perfectColor.Fprintf(w, "\nPerfect (%d)\n", len(plan.Perfect))
	if len(plan.Perfect) == 0 {
		offHoursColor.Fprintln(w, "  no time fits everyone's working hours")
	}
	for _, s := range plan.Perfect {
		printSlot(w, s)
	}

	if len(plan.Sacrifice) > 0 {
		sacrificeColor.Fprintf(w, "\nSacrifice (%d)\n", len(plan.Sacrifice))
		for _, s := range plan.Sacrifice {
			printSlot(w, s)
		}
	}
}

func printSlot(w io.Writer, s types.SlotView) {
	fmt.Fprintf(w, "  %s - %s UTC  score %5.1f\n", s.StartUTC.Format("15:04"), s.EndUTC.Format("15:04"), s.Score)
	for _, p := range s.Participants {
		line := fmt.Sprintf("    %-16s %s-%s%s %-9s", p.Name, p.Start.Time, p.End.Time, dayMarker(p.Start.Crossing), p.Start.Label)
		if p.WithinWorkingHours {
			fmt.Fprintln(w, line)
			continue
		}
		outsideColor.Fprintf(w, "%s outside hours (%.0f)\n", line, p.Score)
	}
}

func dayMarker(crossing string) string {
	switch crossing {
	case "forward":
		return " +1d"
	case "backward":
		return " -1d"
	default:
		return "    "
	}
}

func printSearch(w io.Writer, search types.SearchView) {
	headerColor.Fprintf(w, "Searched %d days\n", len(search.Days))
	for i, d := range search.Days {
		top := "-"
		if best := topSlot(d.Plan); best != nil {
			top = fmt.Sprintf("%5.1f", best.Score)
		}
		line := fmt.Sprintf("  %s  perfect %2d  top %s", d.Date, len(d.Plan.Perfect), top)
		if i == search.Best {
			bestColor.Fprintln(w, line+"  <- best")
			continue
		}
		fmt.Fprintln(w, line)
	}
	if search.Best < 0 {
		fmt.Fprintln(w, "\nno day has a candidate time")
		return
	}
	fmt.Fprintln(w)
	printPlan(w, search.Days[search.Best].Plan)
}

func topSlot(plan types.PlanView) *types.SlotView {
	switch {
	case len(plan.Perfect) > 0:
		return &plan.Perfect[0]
	case len(plan.Sacrifice) > 0:
		return &plan.Sacrifice[0]
	default:
		return nil
	}
}

// printTimeline prints one row per participant with the local hour under
// each reference hour, colored by whether it is inside working hours.
func printTimeline(w io.Writer, tl types.TimelineView) {
	headerColor.Fprintf(w, "Timeline for %s (%s)\n", tl.Date, tl.ReferenceTimezone)

	var header strings.Builder
	header.WriteString(fmt.Sprintf("%-18s", ""))
	for h := range 24 {
		header.WriteString(fmt.Sprintf("%3d", h))
	}
	offHoursColor.Fprintln(w, header.String())

	for _, row := range tl.Rows {
		fmt.Fprintf(w, "%-18s", truncate(row.Name, 17))
		for _, c := range row.Cells {
			hour := " " + c.Local.Time[:2]
			if c.Working {
				perfectColor.Fprint(w, hour)
			} else {
				offHoursColor.Fprint(w, hour)
			}
		}
		fmt.Fprintf(w, "  %s\n", row.Timezone)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
