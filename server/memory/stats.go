package memory

// Stats 内存管理统计信息
type Stats struct {
	PageFaults          uint64 `json:"page_faults"`
	PageLoads           uint64 `json:"page_loads"`
	Evictions           uint64 `json:"evictions"`
	ProcessesCreated    uint64 `json:"processes_created"`
	ProcessesTerminated uint64 `json:"processes_terminated"`
}

// FaultRate 缺页率(百分比)
func (s Stats) FaultRate() float64 {
	if s.PageLoads == 0 {
		return 0
	}
	return float64(s.PageFaults) / float64(s.PageLoads) * 100
}

// Utilization 计算帧利用率(百分比)
func Utilization(frameCount int, freeCount int) float64 {
	if frameCount == 0 {
		return 0
	}
	return float64(frameCount-freeCount) / float64(frameCount) * 100
}
