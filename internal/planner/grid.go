package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// CellKind 网格单元类型
type CellKind string

const (
	CellEmpty      CellKind = "empty"
	CellPaper      CellKind = "paper"
	CellRoundTable CellKind = "round_table"
)

// Cell 网格单元
type Cell struct {
	Position      Position `json:"position"`
	Kind          CellKind `json:"kind"`
	SessionNumber int      `json:"session_number,omitempty"`
	RoundTableID  int      `json:"round_table_id,omitempty"`
	Label         string   `json:"label,omitempty"`
	Continuation  bool     `json:"continuation,omitempty"`
}

// SlotRow 一个时段
type SlotRow struct {
	Slot      int    `json:"slot"`
	Label     string `json:"label"`
	StartTime string `json:"start_time,omitempty"`
	Cells     []Cell `json:"cells"`
}

// DayGrid 一天的网格
type DayGrid struct {
	Day   int       `json:"day"`
	Slots []SlotRow `json:"slots"`
}

// Grid 完整网格
type Grid struct {
	Days                []DayGrid `json:"days"`
	PlacedPaperSessions int       `json:"placed_paper_sessions"`
	PlacedRoundTables   int       `json:"placed_round_tables"`
	UnplacedRoundTables []int     `json:"unplaced_round_tables"`
}

// GridOptions 展示用的自定义标签与开始时间
//
// SlotLabels 的 key 为天序号；SlotTimes 的 key 为 SlotKey(day, slot)，值为 "HH:MM"；
// SessionLabels 的 key 为 SessionLabelKey 生成的键。
type GridOptions struct {
	SlotLabels    map[int][]string
	SlotTimes     map[string]string
	SessionLabels map[string]string
}

// BuildGrid 渲染天/时段/位置网格
func BuildGrid(p Parameters, l Layout, opts GridOptions) Grid {
	g := Grid{
		Days:                make([]DayGrid, 0, p.ConventionDays),
		UnplacedRoundTables: l.UnplacedRoundTables(p.TotalRoundTables),
	}
	if g.UnplacedRoundTables == nil {
		g.UnplacedRoundTables = []int{}
	}
	duration := max(p.RoundTableDuration, 1)

	for day := 1; day <= p.ConventionDays; day++ {
		slots, _, perSlot := p.Day(day)
		dg := DayGrid{Day: day, Slots: make([]SlotRow, 0, slots)}

		for slot := 0; slot < slots; slot++ {
			row := SlotRow{
				Slot:      slot,
				Label:     SlotLabel(day, slot, opts.SlotLabels),
				StartTime: FormatClock(opts.SlotTimes[SlotKey(day, slot)]),
				Cells:     make([]Cell, 0, perSlot),
			}

			for i := 0; i < perSlot; i++ {
				pos := Position{Day: day, Slot: slot, Index: i}
				cell := Cell{Position: pos, Kind: CellEmpty}

				if id, ok := l.RoundTableAt(pos, duration); ok {
					cell.Kind = CellRoundTable
					cell.RoundTableID = id
					cell.Label = SessionLabel(SessionTypeRoundTable, id, opts.SessionLabels)
					cell.Continuation = l.RoundTables[id] != pos
					if !cell.Continuation {
						g.PlacedRoundTables++
					}
				} else if n, ok := l.Papers[pos]; ok {
					cell.Kind = CellPaper
					cell.SessionNumber = n
					cell.Label = SessionLabel(SessionTypePaper, n, opts.SessionLabels)
					g.PlacedPaperSessions++
				}
				row.Cells = append(row.Cells, cell)
			}
			dg.Slots = append(dg.Slots, row)
		}
		g.Days = append(g.Days, dg)
	}

	return g
}

// ── 标签 ──

// SlotKey 时段开始时间的存储键
func SlotKey(day, slot int) string {
	return fmt.Sprintf("%d:%d", day, slot)
}

// SessionLabelKey 场次自定义标签的存储键，如 paper_session_3 / round_table_1
func SessionLabelKey(t SessionType, id int) string {
	if t == SessionTypeRoundTable {
		return fmt.Sprintf("round_table_%d", id)
	}
	return fmt.Sprintf("paper_session_%d", id)
}

// SessionLabel 自定义标签优先，否则使用默认名称
func SessionLabel(t SessionType, id int, custom map[string]string) string {
	if label := strings.TrimSpace(custom[SessionLabelKey(t, id)]); label != "" {
		return label
	}
	if t == SessionTypeRoundTable {
		return fmt.Sprintf("Round Table %d", id)
	}
	return fmt.Sprintf("Paper Session %d", id)
}

// SlotLabel 时段标签：当天自定义标签优先，否则 A…Z，超出后为 "Slot n"
func SlotLabel(day, slot int, custom map[int][]string) string {
	if labels := custom[day]; slot >= 0 && slot < len(labels) {
		if label := strings.TrimSpace(labels[slot]); label != "" {
			return label
		}
	}
	if slot >= 0 && slot < 26 {
		return string(rune('A' + slot))
	}
	return "Slot " + strconv.Itoa(slot+1)
}

// FormatClock "13:30" → "1:30 PM"；无法解析时原样返回
func FormatClock(hhmm string) string {
	h, m, ok := ParseClock(hhmm)
	if !ok {
		return hhmm
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// ParseClock 解析 "HH:MM"
func ParseClock(hhmm string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// AutoSlotTimes 从 start 开始按 场次时长 + 间隔 生成每天各时段的开始时间
func AutoSlotTimes(p Parameters, start string, sessionMinutes, breakMinutes int) map[string]string {
	h, m, ok := ParseClock(start)
	if !ok {
		h, m = 9, 0
	}
	sessionMinutes = orDefault(sessionMinutes, 90)
	breakMinutes = nonNegative(breakMinutes)

	times := make(map[string]string)
	for day := 1; day <= p.ConventionDays; day++ {
		slots, _, _ := p.Day(day)
		minutes := h*60 + m
		for slot := 0; slot < slots; slot++ {
			wrapped := minutes % (24 * 60)
			times[SlotKey(day, slot)] = fmt.Sprintf("%02d:%02d", wrapped/60, wrapped%60)
			minutes += sessionMinutes + breakMinutes
		}
	}
	return times
}
