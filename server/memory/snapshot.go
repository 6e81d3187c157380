package memory

// FrameView 帧的只读视图
type FrameView struct {
	ID     int  `json:"id"`
	Free   bool `json:"free"`
	PID    int  `json:"pid,omitempty"`
	PageID int  `json:"page,omitempty"`
}

// ProcessView 进程的只读视图
type ProcessView struct {
	PID           int    `json:"pid"`
	Name          string `json:"name"`
	Size          int    `json:"size"`
	Color         Color  `json:"color"`
	Pages         []Page `json:"pages"`
	ResidentPages int    `json:"resident_pages"`
}

// Snapshot 管理器状态的深拷贝，供一次渲染或导出使用
type Snapshot struct {
	Policy      ReplacementPolicy `json:"policy"`
	PageSize    int               `json:"page_size"`
	RAMSize     int               `json:"ram_size"`
	SwapSize    int               `json:"swap_size"`
	ClockHand   int               `json:"clock_hand"`
	Frames      []FrameView       `json:"frames"`
	FreeFrames  int               `json:"free_frames"`
	Processes   []ProcessView     `json:"processes"`
	Swap        []SwapEntry       `json:"swap"`
	SwapCap     int               `json:"swap_cap"`
	Stats       Stats             `json:"stats"`
	Utilization float64           `json:"utilization"`
	FaultRate   float64           `json:"fault_rate"`
	Events      []string          `json:"events"`
	Orphans     []int             `json:"orphans,omitempty"`
}

// Snapshot 拷贝当前状态
func (m *Manager) Snapshot() *Snapshot {
	snap := &Snapshot{
		Policy:      m.policy,
		PageSize:    m.pageSize,
		RAMSize:     m.ramSize,
		SwapSize:    m.swapSize,
		ClockHand:   m.clockHand,
		Frames:      make([]FrameView, len(m.frames)),
		FreeFrames:  m.FreeFrames(),
		Processes:   make([]ProcessView, 0, len(m.order)),
		Swap:        m.swap.Entries(),
		SwapCap:     m.swap.Cap(),
		Stats:       m.stats,
		Utilization: m.Utilization(),
		FaultRate:   m.FaultRate(),
		Events:      m.events.Entries(),
		Orphans:     m.Orphans(),
	}
	for i := range m.frames {
		f := &m.frames[i]
		view := FrameView{ID: f.ID, Free: f.Free()}
		if !view.Free {
			view.PID = f.Occupant.PID
			view.PageID = f.Occupant.PageID
		}
		snap.Frames[i] = view
	}
	for _, pid := range m.order {
		p := m.processes[pid]
		pages := make([]Page, len(p.Pages))
		copy(pages, p.Pages)
		snap.Processes = append(snap.Processes, ProcessView{
			PID:           p.PID,
			Name:          p.Name,
			Size:          p.Size,
			Color:         p.Color,
			Pages:         pages,
			ResidentPages: p.ResidentPages(),
		})
	}
	return snap
}

// Process 按进程号查找存活进程
func (s *Snapshot) Process(pid int) (ProcessView, bool) {
	for _, p := range s.Processes {
		if p.PID == pid {
			return p, true
		}
	}
	return ProcessView{}, false
}

// UsedFrames 已占用帧数
func (s *Snapshot) UsedFrames() int {
	return len(s.Frames) - s.FreeFrames
}
