package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xmemsim/server/dispatcher"
	"github.com/zhukovaskychina/xmemsim/server/memory"
	"github.com/zhukovaskychina/xmemsim/util"
)

type scriptedRandom struct {
	values []int
	next   int
}

func (r *scriptedRandom) Intn(n int) int {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

func newTestDriver(t *testing.T, maxProcesses int, values ...int) (*Driver, *dispatcher.CommandDispatcher) {
	t.Helper()
	m, err := memory.NewManager(memory.ManagerConfig{
		RAMSize:  1600,
		PageSize: 100,
		Random:   util.NewRandom(3),
	})
	require.NoError(t, err)
	d := dispatcher.NewCommandDispatcher(m)
	return NewDriver(d, DriverConfig{
		MaxProcesses: maxProcesses,
		AutoMode:     true,
		Random:       &scriptedRandom{values: values},
	}), d
}

func TestDriverStep(t *testing.T) {
	drv, d := newTestDriver(t, 30, 10, 0, 0, 0, 0, 70, 95)

	assert.Equal(t, ActionCreate, drv.Step())
	snap := d.Snapshot()
	require.Len(t, snap.Processes, 1)
	p := snap.Processes[0]
	assert.Equal(t, 1, p.PID)
	assert.Equal(t, "P_1", p.Name)
	assert.Equal(t, 100, p.Size)
	assert.Equal(t, memory.Color{R: 50, G: 50, B: 50}, p.Color)

	assert.Equal(t, ActionKill, drv.Step())
	assert.Equal(t, 0, d.LiveCount())
	assert.Equal(t, uint64(1), d.Snapshot().Stats.ProcessesTerminated)

	assert.Equal(t, ActionIdle, drv.Step())
}

func TestDriverProcessLimit(t *testing.T) {
	drv, d := newTestDriver(t, 1, 10, 399, 204, 204, 204, 10)

	assert.Equal(t, ActionCreate, drv.Step())
	snap := d.Snapshot()
	require.Len(t, snap.Processes, 1)
	assert.Equal(t, 499, snap.Processes[0].Size)
	assert.Equal(t, memory.Color{R: 254, G: 254, B: 254}, snap.Processes[0].Color)

	// 达到上限时创建的概率落入终止分支
	assert.Equal(t, ActionKill, drv.Step())
	assert.Equal(t, 0, d.LiveCount())

	_, err := drv.CreateProcess()
	require.NoError(t, err)
	_, err = drv.CreateProcess()
	assert.Equal(t, dispatcher.ErrProcessLimit, errors.Cause(err))
	events := d.Snapshot().Events
	assert.Equal(t, "[ERROR] Process limit (1) reached", events[len(events)-1])
}

func TestDriverToggles(t *testing.T) {
	drv, d := newTestDriver(t, 30, 10)

	assert.True(t, drv.TogglePause())
	assert.Equal(t, ActionSkipped, drv.Step())
	assert.False(t, drv.TogglePause())

	assert.False(t, drv.ToggleMode())
	assert.Equal(t, ActionSkipped, drv.Step())
	assert.False(t, drv.Auto())
	assert.True(t, drv.ToggleMode())

	events := d.Snapshot().Events
	assert.Contains(t, events, "[STATE] System PAUSED")
	assert.Contains(t, events, "[STATE] System RUNNING")
	assert.Contains(t, events, "[MODE] Switched to MANUAL mode")
	assert.Equal(t, "[MODE] Switched to AUTOMATIC mode", events[len(events)-1])
	assert.Equal(t, 0, d.LiveCount())
}

func TestDriverSetPolicy(t *testing.T) {
	drv, d := newTestDriver(t, 30, 95)
	require.NoError(t, drv.SetPolicy(memory.PolicyClock))
	assert.Equal(t, memory.PolicyClock, d.Policy())
}

func TestDriverRun(t *testing.T) {
	drv, d := newTestDriver(t, 30, 10, 0, 0, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		drv.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return d.Snapshot().Stats.ProcessesCreated >= 3
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestDriverConcurrentCreateRespectsLimit(t *testing.T) {
	drv, d := newTestDriver(t, 3, 10)

	var wg sync.WaitGroup
	for g := 0; g < 6; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := drv.CreateProcess(); err != nil {
					assert.Equal(t, dispatcher.ErrProcessLimit, errors.Cause(err))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, d.LiveCount())
	assert.Equal(t, uint64(3), d.Snapshot().Stats.ProcessesCreated)
}
