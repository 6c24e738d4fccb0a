package planner

// DayCapacity 单日容量明细
type DayCapacity struct {
	Day             int     `json:"day"`
	TimeSlots       int     `json:"time_slots"`
	Rooms           int     `json:"rooms"`
	SessionsPerSlot int     `json:"sessions_per_slot"`
	Capacity        int     `json:"capacity"`
	Sessions        int     `json:"sessions"`
	RoomsUsed       int     `json:"rooms_used"`
	Utilization     float64 `json:"utilization"`
}

// Capacity 容量与可行性
type Capacity struct {
	TotalSessions   int           `json:"total_sessions"`
	TotalCapacity   int           `json:"total_capacity"`
	TotalTimeSlots  int           `json:"total_time_slots"`
	TotalRoomSlots  int           `json:"total_room_slots"`
	MinRoomsNeeded  int           `json:"min_rooms_needed"`
	IsFeasible      bool          `json:"is_feasible"`
	UtilizationRate float64       `json:"utilization_rate"`
	Days            []DayCapacity `json:"days"`
}

// ComputeCapacity 计算容量、利用率与最少会议室数
//
// 自定义日配置下按天累加；统一配置下使用标准值。
// 每日明细按天依次消耗剩余场次：sessionsThisDay = min(remaining, dayCapacity)。
func ComputeCapacity(p Parameters, totalSessions int) Capacity {
	c := Capacity{
		TotalSessions:  totalSessions,
		TotalTimeSlots: p.TotalTimeSlots(),
	}

	if p.CustomDaily {
		for d := 1; d <= p.ConventionDays; d++ {
			slots, rooms, perSlot := p.Day(d)
			c.TotalCapacity += slots * perSlot
			c.TotalRoomSlots += slots * rooms
			c.MinRoomsNeeded = max(c.MinRoomsNeeded, min(rooms, perSlot))
		}
	} else {
		c.TotalCapacity = c.TotalTimeSlots * p.StandardSessionsPerSlot
		c.TotalRoomSlots = c.TotalTimeSlots * p.StandardRooms
		c.MinRoomsNeeded = ceilDiv(totalSessions, c.TotalTimeSlots)
	}

	c.IsFeasible = totalSessions <= c.TotalCapacity
	if c.TotalCapacity > 0 {
		c.UtilizationRate = round1(float64(totalSessions) / float64(c.TotalCapacity) * 100)
	}

	remaining := totalSessions
	c.Days = make([]DayCapacity, 0, p.ConventionDays)
	for d := 1; d <= p.ConventionDays; d++ {
		slots, rooms, perSlot := p.Day(d)
		dc := DayCapacity{
			Day:             d,
			TimeSlots:       slots,
			Rooms:           rooms,
			SessionsPerSlot: perSlot,
			Capacity:        slots * perSlot,
		}
		dc.Sessions = min(remaining, dc.Capacity)
		remaining -= dc.Sessions
		dc.RoomsUsed = ceilDiv(dc.Sessions, slots)
		if dc.Capacity > 0 {
			dc.Utilization = round1(float64(dc.Sessions) / float64(dc.Capacity) * 100)
		}
		c.Days = append(c.Days, dc)
	}

	return c
}
