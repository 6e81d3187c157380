package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/server/dispatcher"
	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// DefaultMaxProcesses 驱动层允许的最大存活进程数
const DefaultMaxProcesses = 30

// Action 一次自动步进的结果
type Action int

const (
	ActionSkipped Action = iota // 暂停或手动模式
	ActionCreate
	ActionKill
	ActionIdle
)

func (a Action) String() string {
	switch a {
	case ActionSkipped:
		return "skipped"
	case ActionCreate:
		return "create"
	case ActionKill:
		return "kill"
	case ActionIdle:
		return "idle"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// DriverConfig 负载驱动配置
type DriverConfig struct {
	MaxProcesses int
	AutoMode     bool
	Random       memory.RandomSource
}

// Driver 负载驱动：按定时器随机创建/终止进程，并把用户按键翻译成命令
type Driver struct {
	dispatcher   *dispatcher.CommandDispatcher
	maxProcesses int

	mu      sync.Mutex
	random  memory.RandomSource
	nextPID int
	auto    bool
	paused  bool
}

func NewDriver(d *dispatcher.CommandDispatcher, cfg DriverConfig) *Driver {
	if cfg.MaxProcesses <= 0 {
		cfg.MaxProcesses = DefaultMaxProcesses
	}
	return &Driver{
		dispatcher:   d,
		maxProcesses: cfg.MaxProcesses,
		random:       cfg.Random,
		nextPID:      1,
		auto:         cfg.AutoMode,
	}
}

// Step 自动模式下的一次决策：60%创建进程(未达上限)，30%终止进程，10%空闲
func (d *Driver) Step() Action {
	d.mu.Lock()
	if !d.auto || d.paused {
		d.mu.Unlock()
		return ActionSkipped
	}
	decision := d.random.Intn(100)
	d.mu.Unlock()

	switch {
	case decision < 60 && d.dispatcher.LiveCount() < d.maxProcesses:
		_, _ = d.spawn()
		return ActionCreate
	case decision < 90:
		d.Kill()
		return ActionKill
	default:
		return ActionIdle
	}
}

// CreateProcess 手动创建进程，达到上限时只记录错误
//
// 上限由分发器在同一临界区内检查，定时器和按键并发创建也不会超出。
func (d *Driver) CreateProcess() (int, error) {
	if d.dispatcher.LiveCount() >= d.maxProcesses {
		d.dispatcher.RecordEvent("[ERROR] Process limit (%d) reached", d.maxProcesses)
		return 0, errors.Annotatef(dispatcher.ErrProcessLimit, "limit %d", d.maxProcesses)
	}
	return d.spawn()
}

// spawn 生成随机大小和颜色的进程，大小在[page, 5*page)之间
func (d *Driver) spawn() (int, error) {
	pageSize := d.dispatcher.PageSize()

	d.mu.Lock()
	pid := d.nextPID
	d.nextPID++
	spec := memory.ProcessSpec{
		PID:  pid,
		Name: fmt.Sprintf("P_%d", pid),
		Size: pageSize + d.random.Intn(pageSize*4),
		Color: memory.Color{
			R: uint8(50 + d.random.Intn(205)),
			G: uint8(50 + d.random.Intn(205)),
			B: uint8(50 + d.random.Intn(205)),
		},
	}
	d.mu.Unlock()

	if _, err := d.dispatcher.Dispatch(dispatcher.AdmitCommand{Spec: spec, Limit: d.maxProcesses}); err != nil {
		logger.Warnf("create %s: %v", spec.Name, err)
		return pid, err
	}
	return pid, nil
}

// Kill 随机终止一个进程
func (d *Driver) Kill() (int, bool) {
	res, err := d.dispatcher.Dispatch(dispatcher.TerminateRandomCommand{})
	if err != nil {
		logger.Errorf("terminate random: %v", err)
		return 0, false
	}
	return res.PID, res.Terminated
}

// SetPolicy 切换置换算法
func (d *Driver) SetPolicy(p memory.ReplacementPolicy) error {
	_, err := d.dispatcher.Dispatch(dispatcher.SetPolicyCommand{Policy: p})
	return err
}

// TogglePause 切换暂停状态，返回新的状态
func (d *Driver) TogglePause() bool {
	d.mu.Lock()
	d.paused = !d.paused
	paused := d.paused
	d.mu.Unlock()

	state := "RUNNING"
	if paused {
		state = "PAUSED"
	}
	d.dispatcher.RecordEvent("[STATE] System %s", state)
	return paused
}

// ToggleMode 在自动和手动模式间切换，返回是否为自动模式
func (d *Driver) ToggleMode() bool {
	d.mu.Lock()
	d.auto = !d.auto
	auto := d.auto
	d.mu.Unlock()

	mode := "MANUAL"
	if auto {
		mode = "AUTOMATIC"
	}
	d.dispatcher.RecordEvent("[MODE] Switched to %s mode", mode)
	return auto
}

func (d *Driver) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func (d *Driver) Auto() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.auto
}

func (d *Driver) MaxProcesses() int {
	return d.maxProcesses
}

// Run 按tick周期调用Step，直到ctx被取消
func (d *Driver) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a := d.Step(); a != ActionSkipped {
				logger.Debugf("simulator step: %s", a)
			}
		}
	}
}
