package memory

import (
	"fmt"
	"strings"
)

const (
	// NoFrame 页面未驻留内存时的帧号
	NoFrame = -1

	// MaxSwapEntries swap区可容纳的最大页面数
	MaxSwapEntries = 50

	// EventLogCapacity 事件日志保留的最近条目数
	EventLogCapacity = 20
)

// ReplacementPolicy 页面置换算法
type ReplacementPolicy int

const (
	PolicyFIFO ReplacementPolicy = iota
	PolicyClock
	PolicyLRU
)

func (p ReplacementPolicy) String() string {
	switch p {
	case PolicyFIFO:
		return "FIFO"
	case PolicyClock:
		return "Clock"
	case PolicyLRU:
		return "LRU"
	default:
		return fmt.Sprintf("ReplacementPolicy(%d)", int(p))
	}
}

// Valid 是否为已知的置换算法
func (p ReplacementPolicy) Valid() bool {
	return p == PolicyFIFO || p == PolicyClock || p == PolicyLRU
}

// ParsePolicy 解析置换算法名称，忽略大小写；"reloj"与"clock"等价
func ParsePolicy(name string) (ReplacementPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fifo", "1":
		return PolicyFIFO, nil
	case "clock", "reloj", "second-chance", "2":
		return PolicyClock, nil
	case "lru", "3":
		return PolicyLRU, nil
	default:
		return PolicyFIFO, fmt.Errorf("%w: %q", ErrInvalidPolicy, name)
	}
}

func (p ReplacementPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, ErrInvalidPolicy
	}
	return []byte(p.String()), nil
}

func (p *ReplacementPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Page 进程的逻辑页
type Page struct {
	ID         int    // 进程内页号，从0开始连续
	Frame      int    // 所在物理帧，NoFrame表示不在内存中
	Referenced bool   // 引用位，仅Clock使用
	LastUsed   uint64 // 最近使用时间戳，仅LRU使用
}

// Resident 页面是否驻留在物理帧中
func (p *Page) Resident() bool {
	return p.Frame != NoFrame
}

// Occupant 物理帧的占用者
type Occupant struct {
	PID    int
	PageID int
}

// Frame 物理帧
type Frame struct {
	ID       int
	Occupant *Occupant
}

// Free 帧是否空闲
func (f *Frame) Free() bool {
	return f.Occupant == nil
}

// Color 进程显示颜色
type Color struct {
	R, G, B uint8
}

// ProcessSpec 创建进程所需的参数
type ProcessSpec struct {
	PID   int
	Name  string
	Size  int
	Color Color
}

// Process 进程及其页表
type Process struct {
	PID   int
	Name  string
	Size  int
	Pages []Page
	Color Color
}

// ResidentPages 返回驻留在内存中的页面数
func (p *Process) ResidentPages() int {
	n := 0
	for i := range p.Pages {
		if p.Pages[i].Resident() {
			n++
		}
	}
	return n
}

// PagesFor 计算size需要的页数(向上取整)
func PagesFor(size int, pageSize int) int {
	if pageSize <= 0 || size <= 0 {
		return 0
	}
	return (size + pageSize - 1) / pageSize
}

// RandomSource 随机数来源，测试中可以注入确定序列
type RandomSource interface {
	// Intn 返回[0,n)内的整数
	Intn(n int) int
}
