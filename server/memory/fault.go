package memory

// loadPage 为页面分配物理帧，没有空闲帧时触发缺页并置换
func (m *Manager) loadPage(pid int, pageID int) error {
	m.stats.PageLoads++
	now := m.stats.PageLoads

	target := m.firstFreeFrame()
	if target == NoFrame {
		m.stats.PageFaults++
		victim, err := m.selectVictim()
		if err != nil {
			return NewError("load page", pid, pageID, err)
		}
		target = victim
	}

	m.frames[target].Occupant = &Occupant{PID: pid, PageID: pageID}
	if pg := m.page(pid, pageID); pg != nil {
		pg.Frame = target
		pg.Referenced = true
		pg.LastUsed = now
	}

	// FIFO把指针当作持续旋转的游标，每次成功装入都前进一格
	if m.policy == PolicyFIFO {
		m.advanceClock()
	}
	return nil
}

func (m *Manager) firstFreeFrame() int {
	for i := range m.frames {
		if m.frames[i].Free() {
			return i
		}
	}
	return NoFrame
}
