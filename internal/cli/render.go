package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"convention-planner/internal/planner"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderPlan 文本格式输出排期结果
func renderPlan(w io.Writer, r planner.Result) error {
	p := r.Parameters
	d := r.Distribution

	fmt.Fprintf(w, "Parameters: %d days, %d slots/day, %d rooms/day, %d sessions/slot\n",
		p.ConventionDays, p.StandardTimeSlots, p.StandardRooms, p.StandardSessionsPerSlot)
	fmt.Fprintf(w, "Papers: %d in %d paper sessions (avg %.1f, min %d, max %d)\n",
		d.TotalPapers, r.PaperSessions, d.Stats.AvgPapersPerSession, d.Stats.MinActual, d.Stats.MaxActual)
	fmt.Fprintf(w, "Round tables: %d x %d slot(s)\n", p.TotalRoundTables, p.RoundTableDuration)
	fmt.Fprintf(w, "Sessions: %d total, capacity %d, utilization %.1f%%\n",
		r.TotalSessions, r.Capacity.TotalCapacity, r.Capacity.UtilizationRate)

	feasible := "no"
	if r.Capacity.IsFeasible {
		feasible = "yes"
	}
	fmt.Fprintf(w, "Feasible: %s (min rooms needed: %d)\n", feasible, r.Capacity.MinRoomsNeeded)

	if p.CustomDaily {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DAY\tSLOTS\tROOMS\tPER SLOT\tCAPACITY\tSESSIONS\tUTIL")
		for _, day := range r.Capacity.Days {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n",
				day.Day, day.TimeSlots, day.Rooms, day.SessionsPerSlot, day.Capacity, day.Sessions, day.Utilization)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(d.Sessions) > 0 || len(r.RoundTables) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tCATEGORY\tPAPERS\tSIZE")
		for _, s := range d.Sessions {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Title, dash(s.Category), s.PaperCount, s.SizeClass)
		}
		for _, s := range r.RoundTables {
			fmt.Fprintf(tw, "%s\t-\t-\t%d slot(s)\n", s.Title, s.Duration)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	writeList(w, "Warnings", d.Warnings)

	messages := make([]string, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		messages = append(messages, s.Message)
	}
	writeList(w, "Suggestions", messages)
	return nil
}

// renderGrid 文本格式输出网格；P 为论文场次，RT 为圆桌，"^" 表示圆桌跨越的后续时段
func renderGrid(w io.Writer, g planner.Grid, paperSessions int) error {
	for _, day := range g.Days {
		fmt.Fprintf(w, "Day %d\n", day.Day)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, row := range day.Slots {
			cells := make([]string, 0, len(row.Cells)+1)
			head := row.Label
			if row.StartTime != "" {
				head += " " + row.StartTime
			}
			cells = append(cells, "  "+head)
			for _, cell := range row.Cells {
				cells = append(cells, cellText(cell))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Placed: %d/%d paper sessions, %d round tables\n",
		g.PlacedPaperSessions, paperSessions, g.PlacedRoundTables)
	if len(g.UnplacedRoundTables) > 0 {
		ids := make([]string, 0, len(g.UnplacedRoundTables))
		for _, id := range g.UnplacedRoundTables {
			ids = append(ids, fmt.Sprintf("RT%d", id))
		}
		fmt.Fprintf(w, "Unplaced round tables: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

func cellText(c planner.Cell) string {
	switch c.Kind {
	case planner.CellPaper:
		return fmt.Sprintf("P%d", c.SessionNumber)
	case planner.CellRoundTable:
		if c.Continuation {
			return fmt.Sprintf("^RT%d", c.RoundTableID)
		}
		return fmt.Sprintf("RT%d", c.RoundTableID)
	default:
		return "."
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
