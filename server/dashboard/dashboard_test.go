package dashboard

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xmemsim/server/dispatcher"
	"github.com/zhukovaskychina/xmemsim/server/memory"
	"github.com/zhukovaskychina/xmemsim/server/simulator"
	"github.com/zhukovaskychina/xmemsim/util"
)

func newTestDashboard(t *testing.T, frames int) (*Dashboard, *dispatcher.CommandDispatcher) {
	t.Helper()
	m, err := memory.NewManager(memory.ManagerConfig{
		RAMSize:  frames * 100,
		SwapSize: 1000,
		PageSize: 100,
		Random:   util.NewRandom(5),
	})
	require.NoError(t, err)
	d := dispatcher.NewCommandDispatcher(m)
	drv := simulator.NewDriver(d, simulator.DriverConfig{MaxProcesses: 30, Random: util.NewRandom(9)})
	return New(d, drv, filepath.Join(t.TempDir(), "dump")), d
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.0%", FormatPercent(0, 1))
	assert.Equal(t, "33.33%", FormatPercent(100.0/3, 2))
	assert.Equal(t, "100.0%", FormatPercent(100, 1))
}

func TestSnapshotText(t *testing.T) {
	m, err := memory.NewManager(memory.ManagerConfig{RAMSize: 400, PageSize: 100, Policy: memory.PolicyLRU})
	require.NoError(t, err)
	require.NoError(t, m.Admit(memory.ProcessSpec{PID: 1, Name: "A", Size: 250, Color: memory.Color{R: 200, G: 200, B: 200}}))
	require.NoError(t, m.Admit(memory.ProcessSpec{PID: 2, Name: "B", Size: 150, Color: memory.Color{R: 60, G: 60, B: 60}}))
	snap := m.Snapshot()

	assert.Equal(t, " Memory Manager | Policy: LRU | Mode: AUTOMATIC | State: PAUSED ", TopBarText(snap, true, true))
	assert.Equal(t, "Processes: 2/30 | RAM Usage: 4/4 frames (100.0%) | Page Faults: 1 (20.00%) | Swaps: 1", StatsText(snap, 30))
	assert.Equal(t, []string{"PID 01 | 250KB | 2/3 pgs", "PID 02 | 150KB | 2/2 pgs"}, ProcessRows(snap))
	assert.Equal(t, []string{"P01 page 0"}, SwapRows(snap))
	assert.Equal(t, " Swap (1/50) ", SwapTitle(snap))

	frameMap := FrameMapText(snap)
	assert.True(t, strings.HasPrefix(frameMap, "[P02:1](fg:magenta,mod:bold)"), frameMap)
	assert.Contains(t, frameMap, "[P01:1](fg:cyan,mod:bold)")

	metrics := MetricsText(snap)
	assert.Contains(t, metrics, "Total Loads: 5")
	assert.Contains(t, metrics, "Fault Rate: 20.00%")
	assert.NotContains(t, metrics, "Leaked")
}

func TestFrameMapLayout(t *testing.T) {
	m, err := memory.NewManager(memory.ManagerConfig{RAMSize: 1000, PageSize: 100})
	require.NoError(t, err)
	text := FrameMapText(m.Snapshot())
	lines := strings.Split(text, "\n\n")
	require.Len(t, lines, 2)
	assert.Equal(t, FrameMapColumns, strings.Count(lines[0], "[ -- ]"))
	assert.Equal(t, 2, strings.Count(lines[1], "[ -- ]"))
}

func TestHandleKey(t *testing.T) {
	db, d := newTestDashboard(t, 8)

	assert.False(t, db.HandleKey("n"))
	assert.Equal(t, 1, d.LiveCount())

	assert.False(t, db.HandleKey("3"))
	assert.Equal(t, memory.PolicyLRU, d.Policy())
	assert.False(t, db.HandleKey("2"))
	assert.Equal(t, memory.PolicyClock, d.Policy())
	assert.False(t, db.HandleKey("1"))
	assert.Equal(t, memory.PolicyFIFO, d.Policy())

	assert.False(t, db.HandleKey("p"))
	assert.True(t, db.driver.Paused())
	assert.False(t, db.HandleKey("a"))
	assert.True(t, db.driver.Auto())

	assert.False(t, db.HandleKey("k"))
	assert.Equal(t, 0, d.LiveCount())

	assert.False(t, db.HandleKey("x"))
	assert.True(t, db.HandleKey("q"))
}

func TestHandleKeyDump(t *testing.T) {
	db, d := newTestDashboard(t, 4)
	db.HandleKey("n")
	db.HandleKey("d")

	events := d.Snapshot().Events
	last := events[len(events)-1]
	require.True(t, strings.HasPrefix(last, "[DUMP] Snapshot written to "), last)

	files, err := ioutil.ReadDir(db.dumpDir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
