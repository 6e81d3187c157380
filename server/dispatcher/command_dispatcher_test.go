package dispatcher

import (
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xmemsim/server/memory"
	"github.com/zhukovaskychina/xmemsim/util"
)

func newTestDispatcher(t *testing.T, frames int) *CommandDispatcher {
	t.Helper()
	m, err := memory.NewManager(memory.ManagerConfig{
		RAMSize:  frames * 100,
		PageSize: 100,
		Policy:   memory.PolicyFIFO,
		Random:   util.NewRandom(1),
	})
	require.NoError(t, err)
	return NewCommandDispatcher(m)
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("admit 3 editor 250")
	require.NoError(t, err)
	assert.Equal(t, AdmitCommand{Spec: memory.ProcessSpec{PID: 3, Name: "editor", Size: 250}}, cmd)

	cmd, err = ParseCommand("kill")
	require.NoError(t, err)
	assert.Equal(t, TerminateRandomCommand{}, cmd)

	cmd, err = ParseCommand("kill 4")
	require.NoError(t, err)
	assert.Equal(t, TerminateCommand{PID: 4}, cmd)

	cmd, err = ParseCommand("POLICY clock")
	require.NoError(t, err)
	assert.Equal(t, SetPolicyCommand{Policy: memory.PolicyClock}, cmd)

	cmd, err = ParseCommand("snapshot")
	require.NoError(t, err)
	assert.Equal(t, CMD_SNAPSHOT, cmd.Type())

	for _, bad := range []string{"", "admit 1 x", "admit x y 10", "admit 1 y -5", "kill me", "policy", "policy mru", "reboot"} {
		_, err := ParseCommand(bad)
		assert.Error(t, err, bad)
	}
	_, err = ParseCommand("reboot")
	assert.True(t, errors.IsNotSupported(err))
}

func TestDispatch(t *testing.T) {
	d := newTestDispatcher(t, 4)

	res, err := d.Dispatch(AdmitCommand{Spec: memory.ProcessSpec{PID: 1, Name: "A", Size: 250}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PID)

	_, err = d.Dispatch(AdmitCommand{Spec: memory.ProcessSpec{PID: 2, Name: "B", Size: 150}})
	require.NoError(t, err)

	res, err = d.Dispatch(SnapshotCommand{})
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, uint64(1), res.Snapshot.Stats.PageFaults)
	assert.Len(t, res.Snapshot.Processes, 2)

	_, err = d.Dispatch(SetPolicyCommand{Policy: memory.PolicyLRU})
	require.NoError(t, err)
	assert.Equal(t, memory.PolicyLRU, d.Policy())

	res, err = d.Dispatch(TerminateCommand{PID: 9})
	require.NoError(t, err)
	assert.False(t, res.Terminated)

	res, err = d.Dispatch(TerminateCommand{PID: 1})
	require.NoError(t, err)
	assert.True(t, res.Terminated)

	res, err = d.Dispatch(TerminateRandomCommand{})
	require.NoError(t, err)
	assert.True(t, res.Terminated)
	assert.Equal(t, 2, res.PID)
	assert.Equal(t, 0, d.LiveCount())

	_, err = d.Dispatch(nil)
	assert.True(t, errors.IsNotValid(err))
}

func TestDispatchSwapFull(t *testing.T) {
	d := newTestDispatcher(t, 1)
	_, err := d.Dispatch(AdmitCommand{Spec: memory.ProcessSpec{PID: 1, Name: "big", Size: 5200}})
	require.Error(t, err)
	assert.True(t, memory.IsSwapFull(errors.Cause(err)))

	snap := d.Snapshot()
	assert.Len(t, snap.Swap, memory.MaxSwapEntries)
	assert.Equal(t, []int{1}, snap.Orphans)
}

func TestDispatchConcurrent(t *testing.T) {
	d := newTestDispatcher(t, 8)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				pid := g*100 + i
				_, _ = d.Dispatch(AdmitCommand{Spec: memory.ProcessSpec{PID: pid, Size: 100}})
				if i%2 == 1 {
					_, _ = d.Dispatch(TerminateRandomCommand{})
				}
				d.Snapshot()
			}
		}(g)
	}
	wg.Wait()

	snap := d.Snapshot()
	assert.Equal(t, uint64(100), snap.Stats.ProcessesCreated)
	assert.LessOrEqual(t, len(snap.Swap), memory.MaxSwapEntries)
}

func TestDispatchProcessLimit(t *testing.T) {
	d := newTestDispatcher(t, 8)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				spec := memory.ProcessSpec{PID: g*100 + i, Size: 100}
				_, err := d.Dispatch(AdmitCommand{Spec: spec, Limit: 5})
				if err != nil {
					assert.Equal(t, ErrProcessLimit, errors.Cause(err))
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 5, d.LiveCount())
	snap := d.Snapshot()
	assert.Equal(t, uint64(5), snap.Stats.ProcessesCreated)
	assert.Equal(t, "[ERROR] Process limit (5) reached", snap.Events[len(snap.Events)-1])
}
