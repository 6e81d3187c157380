package memory

import (
	"github.com/zhukovaskychina/xmemsim/logger"
)

// selectVictim 按当前算法选出被置换的帧并把其页面换出到swap区
//
// 只在没有空闲帧时调用。swap区已满时返回ErrSwapFull，
// 此时受害帧和其页面的驻留状态都保持不变。
func (m *Manager) selectVictim() (int, error) {
	if len(m.frames) == 0 {
		return NoFrame, ErrNoFrames
	}

	var victim int
	switch m.policy {
	case PolicyFIFO:
		victim = m.clockHand
	case PolicyClock:
		victim = m.secondChance()
	case PolicyLRU:
		victim = m.leastRecentlyUsed()
	default:
		return NoFrame, ErrInvalidPolicy
	}

	occ := m.frames[victim].Occupant
	if occ == nil {
		// 没有空闲帧时不会出现
		return victim, nil
	}
	if m.swap.Full() {
		logger.Warnf("swap full, cannot evict P%d page %d from frame %d", occ.PID, occ.PageID, victim)
		return NoFrame, ErrSwapFull
	}

	if pg := m.page(occ.PID, occ.PageID); pg != nil {
		pg.Frame = NoFrame
	}
	// Full已检查过，Push不会失败
	_ = m.swap.Push(occ.PID, occ.PageID)
	m.stats.Evictions++
	m.RecordEvent("[SWAP] Process P%d page %d moved to swap (frame %d freed)", occ.PID, occ.PageID, victim)
	logger.Debugf("evicted P%d page %d from frame %d (%s)", occ.PID, occ.PageID, victim, m.policy)
	return victim, nil
}

// secondChance Clock算法：引用位为1的页面清零并跳过，指针停在受害帧
func (m *Manager) secondChance() int {
	for {
		idx := m.clockHand
		occ := m.frames[idx].Occupant
		if occ == nil {
			return idx
		}
		pg := m.page(occ.PID, occ.PageID)
		if pg == nil || !pg.Referenced {
			return idx
		}
		pg.Referenced = false
		m.advanceClock()
	}
}

// leastRecentlyUsed 选出LastUsed最小的帧，相同时取下标最小者
func (m *Manager) leastRecentlyUsed() int {
	victim := NoFrame
	var oldest uint64
	for i := range m.frames {
		occ := m.frames[i].Occupant
		if occ == nil {
			continue
		}
		pg := m.page(occ.PID, occ.PageID)
		if pg == nil {
			continue
		}
		if victim == NoFrame || pg.LastUsed < oldest {
			oldest = pg.LastUsed
			victim = i
		}
	}
	if victim == NoFrame {
		return 0
	}
	return victim
}
