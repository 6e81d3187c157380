package dashboard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// FrameMapColumns 帧地图每行显示的帧数
const FrameMapColumns = 8

const footerText = " [q](fg:yellow) quit  [p](fg:yellow) pause  [a](fg:yellow) auto/manual  [n](fg:yellow) new  " +
	"[k](fg:yellow) kill  [1](fg:yellow) FIFO  [2](fg:yellow) Clock  [3](fg:yellow) LRU  [d](fg:yellow) dump"

// FormatPercent 按places位小数格式化百分比
func FormatPercent(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

// TopBarText 顶栏：算法、模式、运行状态
func TopBarText(snap *memory.Snapshot, paused bool, auto bool) string {
	state := "RUNNING"
	if paused {
		state = "PAUSED"
	}
	mode := "MANUAL"
	if auto {
		mode = "AUTOMATIC"
	}
	return fmt.Sprintf(" Memory Manager | Policy: %s | Mode: %s | State: %s ", snap.Policy, mode, state)
}

// StatsText 统计栏
func StatsText(snap *memory.Snapshot, maxProcesses int) string {
	stats := []string{
		fmt.Sprintf("Processes: %d/%d", len(snap.Processes), maxProcesses),
		fmt.Sprintf("RAM Usage: %d/%d frames (%s)", snap.UsedFrames(), len(snap.Frames), FormatPercent(snap.Utilization, 1)),
		fmt.Sprintf("Page Faults: %d (%s)", snap.Stats.PageFaults, FormatPercent(snap.FaultRate, 2)),
		fmt.Sprintf("Swaps: %d", snap.Stats.Evictions),
	}
	return strings.Join(stats, " | ")
}

// colorBucket 按进程颜色亮度选择终端颜色
func colorBucket(c memory.Color) string {
	base := (int(c.R) + int(c.G) + int(c.B)) / 3
	switch {
	case base > 180:
		return "cyan"
	case base > 100:
		return "blue"
	default:
		return "magenta"
	}
}

// FrameMapText 物理帧地图，使用termui的样式标记
func FrameMapText(snap *memory.Snapshot) string {
	colors := make(map[int]string, len(snap.Processes))
	for _, p := range snap.Processes {
		colors[p.PID] = colorBucket(p.Color)
	}

	var sb strings.Builder
	for i, f := range snap.Frames {
		if i > 0 {
			if i%FrameMapColumns == 0 {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString("  ")
			}
		}
		if f.Free {
			sb.WriteString("[ -- ](fg:white)")
			continue
		}
		color, ok := colors[f.PID]
		if !ok {
			// 准入失败遗留的帧
			color = "red"
		}
		fmt.Fprintf(&sb, "[P%02d:%d](fg:%s,mod:bold)", f.PID, f.PageID, color)
	}
	return sb.String()
}

// MetricsText 性能指标
func MetricsText(snap *memory.Snapshot) string {
	lines := []string{
		fmt.Sprintf("Total Loads: %d", snap.Stats.PageLoads),
		fmt.Sprintf("Page Faults: %d", snap.Stats.PageFaults),
		fmt.Sprintf("Fault Rate: %s", FormatPercent(snap.FaultRate, 2)),
		fmt.Sprintf("Swaps: %d", snap.Stats.Evictions),
		fmt.Sprintf("Created/Ended: %d/%d", snap.Stats.ProcessesCreated, snap.Stats.ProcessesTerminated),
		fmt.Sprintf("Clock Hand: %d", snap.ClockHand),
	}
	if len(snap.Orphans) > 0 {
		lines = append(lines, fmt.Sprintf("Leaked: %v", snap.Orphans))
	}
	return strings.Join(lines, "\n")
}

// ProcessRows 存活进程列表
func ProcessRows(snap *memory.Snapshot) []string {
	rows := make([]string, 0, len(snap.Processes))
	for _, p := range snap.Processes {
		rows = append(rows, fmt.Sprintf("PID %02d | %dKB | %d/%d pgs", p.PID, p.Size, p.ResidentPages, len(p.Pages)))
	}
	return rows
}

// SwapRows swap区内容
func SwapRows(snap *memory.Snapshot) []string {
	rows := make([]string, 0, len(snap.Swap))
	for _, e := range snap.Swap {
		rows = append(rows, fmt.Sprintf("P%02d page %d", e.PID, e.PageID))
	}
	return rows
}

// SwapTitle swap面板标题
func SwapTitle(snap *memory.Snapshot) string {
	return fmt.Sprintf(" Swap (%d/%d) ", len(snap.Swap), snap.SwapCap)
}
