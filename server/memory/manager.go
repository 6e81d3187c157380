package memory

import (
	"fmt"
	"sort"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/util"
)

// ManagerConfig 内存管理器配置
type ManagerConfig struct {
	RAMSize  int
	SwapSize int // 仅用于展示，swap区的实际上限固定为MaxSwapEntries
	PageSize int
	Policy   ReplacementPolicy
	Random   RandomSource // 为nil时使用时间种子
}

// Manager 内存管理器：帧表、进程页表、swap区和置换算法
//
// Manager不是并发安全的，所有操作都假定调用方独占访问。
type Manager struct {
	frames    []Frame
	pageSize  int
	ramSize   int
	swapSize  int
	policy    ReplacementPolicy
	clockHand int // FIFO和Clock共用的帧指针

	processes map[int]*Process
	order     []int // 存活进程按准入顺序排列

	// 正在准入中的进程，准入失败后移入orphans
	admitting *Process
	orphans   map[int]*Process

	swap   *SwapArea
	events *EventLog
	stats  Stats
	random RandomSource
}

// NewManager 创建内存管理器，帧数为RAMSize/PageSize
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", cfg.PageSize)
	}
	if cfg.RAMSize < 0 {
		return nil, fmt.Errorf("invalid ram size %d", cfg.RAMSize)
	}
	if !cfg.Policy.Valid() {
		return nil, ErrInvalidPolicy
	}
	random := cfg.Random
	if random == nil {
		random = util.NewTimeSeededRandom()
	}

	frameCount := cfg.RAMSize / cfg.PageSize
	m := &Manager{
		frames:    make([]Frame, frameCount),
		pageSize:  cfg.PageSize,
		ramSize:   cfg.RAMSize,
		swapSize:  cfg.SwapSize,
		policy:    cfg.Policy,
		processes: make(map[int]*Process),
		orphans:   make(map[int]*Process),
		swap:      NewSwapArea(MaxSwapEntries),
		events:    NewEventLog(EventLogCapacity),
		random:    random,
	}
	for i := range m.frames {
		m.frames[i].ID = i
	}

	m.RecordEvent("[INIT] System started - Policy: %s | RAM: %dKB | Swap: %dKB",
		cfg.Policy, cfg.RAMSize, cfg.SwapSize)
	logger.Debugf("memory manager created: %d frames of %d, policy %s", frameCount, cfg.PageSize, cfg.Policy)
	return m, nil
}

// RecordEvent 追加一条事件日志
func (m *Manager) RecordEvent(format string, args ...interface{}) {
	m.events.Push(fmt.Sprintf(format, args...))
}

// SetPolicy 切换置换算法，下一次缺页时生效
func (m *Manager) SetPolicy(p ReplacementPolicy) error {
	if !p.Valid() {
		return ErrInvalidPolicy
	}
	m.policy = p
	m.RecordEvent("[CONFIG] Policy changed to %s", p)
	logger.Infof("replacement policy set to %s", p)
	return nil
}

func (m *Manager) Policy() ReplacementPolicy {
	return m.policy
}

func (m *Manager) PageSize() int {
	return m.pageSize
}

func (m *Manager) FrameCount() int {
	return len(m.frames)
}

// ClockHand 当前FIFO/Clock指针位置
func (m *Manager) ClockHand() int {
	return m.clockHand
}

// FreeFrames 统计空闲帧数量
func (m *Manager) FreeFrames() int {
	n := 0
	for i := range m.frames {
		if m.frames[i].Free() {
			n++
		}
	}
	return n
}

// Utilization RAM利用率(百分比)
func (m *Manager) Utilization() float64 {
	return Utilization(len(m.frames), m.FreeFrames())
}

// FaultRate 缺页率(百分比)
func (m *Manager) FaultRate() float64 {
	return m.stats.FaultRate()
}

func (m *Manager) Stats() Stats {
	return m.stats
}

// LiveCount 存活进程数
func (m *Manager) LiveCount() int {
	return len(m.order)
}

// IsLive 进程是否存活
func (m *Manager) IsLive(pid int) bool {
	_, ok := m.processes[pid]
	return ok
}

// Events 从旧到新返回事件日志
func (m *Manager) Events() []string {
	return m.events.Entries()
}

// SwapEntries 按插入顺序返回swap区内容
func (m *Manager) SwapEntries() []SwapEntry {
	return m.swap.Entries()
}

// Orphans 准入失败但仍占有帧的进程号
func (m *Manager) Orphans() []int {
	out := make([]int, 0, len(m.orphans))
	for pid := range m.orphans {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// owner 查找进程，包括正在准入和准入失败的进程
func (m *Manager) owner(pid int) *Process {
	if p, ok := m.processes[pid]; ok {
		return p
	}
	if m.admitting != nil && m.admitting.PID == pid {
		return m.admitting
	}
	return m.orphans[pid]
}

func (m *Manager) page(pid int, pageID int) *Page {
	p := m.owner(pid)
	if p == nil || pageID < 0 || pageID >= len(p.Pages) {
		return nil
	}
	return &p.Pages[pageID]
}

func (m *Manager) advanceClock() {
	if n := len(m.frames); n > 0 {
		m.clockHand = (m.clockHand + 1) % n
	}
}

// CheckConsistency 校验帧表与页表的双向映射以及swap区上限
func (m *Manager) CheckConsistency() error {
	pointedAt := make(map[Occupant]int)
	for i := range m.frames {
		f := &m.frames[i]
		if f.ID != i {
			return fmt.Errorf("frame %d has id %d", i, f.ID)
		}
		if f.Free() {
			continue
		}
		pg := m.page(f.Occupant.PID, f.Occupant.PageID)
		if pg == nil {
			return fmt.Errorf("frame %d occupied by unknown page P%d/%d", i, f.Occupant.PID, f.Occupant.PageID)
		}
		if pg.Frame != i {
			return fmt.Errorf("frame %d holds P%d/%d but page points at %d", i, f.Occupant.PID, f.Occupant.PageID, pg.Frame)
		}
		pointedAt[*f.Occupant]++
	}
	check := func(p *Process) error {
		for _, pg := range p.Pages {
			if !pg.Resident() {
				continue
			}
			if n := pointedAt[Occupant{PID: p.PID, PageID: pg.ID}]; n != 1 {
				return fmt.Errorf("page P%d/%d resident in frame %d but referenced by %d frames", p.PID, pg.ID, pg.Frame, n)
			}
			if m.swap.Contains(p.PID, pg.ID) {
				return fmt.Errorf("page P%d/%d is both resident and swapped", p.PID, pg.ID)
			}
		}
		return nil
	}
	for _, p := range m.processes {
		if err := check(p); err != nil {
			return err
		}
	}
	for _, p := range m.orphans {
		if err := check(p); err != nil {
			return err
		}
	}
	if m.swap.Len() > MaxSwapEntries {
		return fmt.Errorf("swap holds %d entries", m.swap.Len())
	}
	if len(m.frames) > 0 && (m.clockHand < 0 || m.clockHand >= len(m.frames)) {
		return fmt.Errorf("clock hand %d out of range", m.clockHand)
	}
	return nil
}
