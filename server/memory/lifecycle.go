package memory

import (
	"github.com/zhukovaskychina/xmemsim/logger"
)

// Admit 创建进程并装入它的全部页面
//
// 任意一页装入失败(swap区已满)时准入中止，已经分配给前面页面的帧不会回收：
// 进程被记入orphans，它占有的帧无法通过Terminate释放。
// orphans中的进程号不能再次准入，否则帧和swap条目会被新进程认领。
func (m *Manager) Admit(spec ProcessSpec) error {
	if _, leaked := m.orphans[spec.PID]; leaked {
		m.RecordEvent("[ERROR] Process P%d rejected: pid owns leaked frames", spec.PID)
		logger.Warnf("admission of P%d rejected: pid belongs to an aborted admission", spec.PID)
		return NewError("admit", spec.PID, 0, ErrPIDLeaked)
	}

	pageCount := PagesFor(spec.Size, m.pageSize)
	proc := &Process{
		PID:   spec.PID,
		Name:  spec.Name,
		Size:  spec.Size,
		Pages: make([]Page, 0, pageCount),
		Color: spec.Color,
	}
	for i := 0; i < pageCount; i++ {
		proc.Pages = append(proc.Pages, Page{
			ID:         i,
			Frame:      NoFrame,
			Referenced: true,
		})
	}

	m.stats.ProcessesCreated++
	m.RecordEvent("[NEW] Process P%d '%s' created (%dKB, %d pages)", proc.PID, proc.Name, proc.Size, pageCount)

	m.admitting = proc
	defer func() { m.admitting = nil }()

	for i := 0; i < pageCount; i++ {
		if err := m.loadPage(proc.PID, i); err != nil {
			if proc.ResidentPages() > 0 {
				m.orphans[proc.PID] = proc
			}
			m.RecordEvent("[ERROR] Process P%d admission aborted: %v", proc.PID, err)
			logger.Warnf("admission of P%d aborted at page %d/%d: %v", proc.PID, i, pageCount, err)
			return err
		}
	}

	m.processes[proc.PID] = proc
	m.order = append(m.order, proc.PID)
	logger.Debugf("admitted P%d '%s' with %d pages", proc.PID, proc.Name, pageCount)
	return nil
}

// Terminate 终止存活进程，释放其全部帧和swap条目；进程不存在时什么也不做
func (m *Manager) Terminate(pid int) bool {
	if _, ok := m.processes[pid]; !ok {
		return false
	}

	freed := 0
	for i := range m.frames {
		if occ := m.frames[i].Occupant; occ != nil && occ.PID == pid {
			m.frames[i].Occupant = nil
			freed++
		}
	}
	purged := m.swap.RemoveProcess(pid)

	delete(m.processes, pid)
	for i, id := range m.order {
		if id == pid {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	m.stats.ProcessesTerminated++
	m.RecordEvent("[TERM] Process P%d terminated and released", pid)
	logger.Debugf("terminated P%d: %d frames freed, %d swap entries purged", pid, freed, purged)
	return true
}

// TerminateRandom 随机终止一个存活进程，没有存活进程时返回false
func (m *Manager) TerminateRandom() (int, bool) {
	if len(m.order) == 0 {
		return 0, false
	}
	pid := m.order[m.random.Intn(len(m.order))]
	return pid, m.Terminate(pid)
}
