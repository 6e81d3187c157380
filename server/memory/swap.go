package memory

import (
	"github.com/zhukovaskychina/xmemsim/util"
)

// SwapEntry swap区中的一个页面
type SwapEntry struct {
	PID    int `json:"pid"`
	PageID int `json:"page"`
}

// SwapArea 有界swap区，保持插入顺序，按(pid,page)的hash维护成员索引
type SwapArea struct {
	capacity int
	entries  []SwapEntry
	index    map[uint64]int
}

// NewSwapArea 创建容量为capacity的swap区
func NewSwapArea(capacity int) *SwapArea {
	return &SwapArea{
		capacity: capacity,
		entries:  make([]SwapEntry, 0, capacity),
		index:    make(map[uint64]int, capacity),
	}
}

func (s *SwapArea) Len() int {
	return len(s.entries)
}

func (s *SwapArea) Cap() int {
	return s.capacity
}

func (s *SwapArea) Full() bool {
	return len(s.entries) >= s.capacity
}

// Push 追加一个换出的页面，已满时返回ErrSwapFull且不做任何修改
func (s *SwapArea) Push(pid int, pageID int) error {
	if s.Full() {
		return ErrSwapFull
	}
	s.entries = append(s.entries, SwapEntry{PID: pid, PageID: pageID})
	s.index[util.HashPageKey(pid, pageID)]++
	return nil
}

// Contains 页面是否在swap区中
func (s *SwapArea) Contains(pid int, pageID int) bool {
	if s.index[util.HashPageKey(pid, pageID)] == 0 {
		return false
	}
	// hash冲突时回退到线性查找
	for _, e := range s.entries {
		if e.PID == pid && e.PageID == pageID {
			return true
		}
	}
	return false
}

// RemoveProcess 删除某进程的全部页面，返回删除的条目数
func (s *SwapArea) RemoveProcess(pid int) int {
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.PID == pid {
			key := util.HashPageKey(e.PID, e.PageID)
			if s.index[key]--; s.index[key] <= 0 {
				delete(s.index, key)
			}
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// Entries 按插入顺序返回swap区内容的副本
func (s *SwapArea) Entries() []SwapEntry {
	out := make([]SwapEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
