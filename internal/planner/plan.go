package planner

import "fmt"

// SuggestionKind 不可行时的调整方向
type SuggestionKind string

const (
	SuggestRooms            SuggestionKind = "rooms"
	SuggestTimeSlots        SuggestionKind = "time_slots"
	SuggestDays             SuggestionKind = "days"
	SuggestPapersPerSession SuggestionKind = "papers_per_session"
)

// Suggestion 一条调整建议；Target 为建议值（0 表示无法给出具体值）
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Current int            `json:"current"`
	Target  int            `json:"target"`
	Message string         `json:"message"`
}

// Result 一次完整的排期计算结果
type Result struct {
	Parameters         Parameters   `json:"parameters"`
	Distribution       Distribution `json:"distribution"`
	RoundTables        []Session    `json:"round_tables"`
	PaperSessions      int          `json:"paper_sessions"`
	RoundTableSessions int          `json:"round_table_sessions"`
	TotalSessions      int          `json:"total_sessions"`
	Capacity           Capacity     `json:"capacity"`
	SessionsPerDay     int          `json:"sessions_per_day"`
	RoomsUsedPerDay    int          `json:"rooms_used_per_day"`
	ExcessRooms        int          `json:"excess_rooms"`
	SessionsPerSlot    int          `json:"sessions_per_slot"`
	Suggestions        []Suggestion `json:"suggestions,omitempty"`
}

// Plan 从参数计算完整结果；纯函数，不会失败
func Plan(p Parameters) Result {
	// 1. 论文场次与圆桌场次
	dist := Distribute(p)
	r := Result{
		Parameters:         p,
		Distribution:       dist,
		RoundTables:        RoundTableSessions(p),
		PaperSessions:      len(dist.Sessions),
		RoundTableSessions: p.RoundTableSessionCount(),
	}
	r.TotalSessions = r.PaperSessions + r.RoundTableSessions

	// 2. 容量
	r.Capacity = ComputeCapacity(p, r.TotalSessions)

	// 3. 派生指标
	totalSlots := r.Capacity.TotalTimeSlots
	r.SessionsPerDay = ceilDiv(r.TotalSessions, p.ConventionDays)
	if p.CustomDaily {
		for _, n := range p.RoomsPerDay {
			r.RoomsUsedPerDay = max(r.RoomsUsedPerDay, n)
		}
	} else {
		r.RoomsUsedPerDay = ceilDiv(r.SessionsPerDay, p.StandardTimeSlots)
	}
	r.ExcessRooms = p.StandardRooms - r.Capacity.MinRoomsNeeded
	r.SessionsPerSlot = ceilDiv(r.TotalSessions, totalSlots)

	// 4. 不可行时给出建议
	if !r.Capacity.IsFeasible {
		r.Suggestions = suggest(p, r)
	}

	return r
}

func suggest(p Parameters, r Result) []Suggestion {
	var out []Suggestion

	out = append(out, Suggestion{
		Kind:    SuggestRooms,
		Current: p.StandardRooms,
		Target:  r.Capacity.MinRoomsNeeded,
		Message: fmt.Sprintf("将会议室数增加到至少 %d 间", r.Capacity.MinRoomsNeeded),
	})

	slotsNeeded := ceilDiv(r.TotalSessions, p.ConventionDays*p.StandardSessionsPerSlot)
	out = append(out, Suggestion{
		Kind:    SuggestTimeSlots,
		Current: p.StandardTimeSlots,
		Target:  slotsNeeded,
		Message: fmt.Sprintf("增加每天的时段数（当前 %d）", p.StandardTimeSlots),
	})

	if perDay := p.StandardTimeSlots * p.StandardRooms; perDay > 0 {
		days := ceilDiv(r.TotalSessions, perDay)
		out = append(out, Suggestion{
			Kind:    SuggestDays,
			Current: p.ConventionDays,
			Target:  days,
			Message: fmt.Sprintf("将会期延长到 %d 天", days),
		})
	}

	if slots := r.Capacity.TotalTimeSlots*p.StandardRooms - r.RoundTableSessions; slots > 0 {
		papers := ceilDiv(p.TotalPapers, slots)
		out = append(out, Suggestion{
			Kind:    SuggestPapersPerSession,
			Current: p.PapersPerSession,
			Target:  papers,
			Message: fmt.Sprintf("将每场论文数提高到 %d 篇", papers),
		})
	}

	return out
}
