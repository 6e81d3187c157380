package dispatcher

import (
	"sync"

	"github.com/juju/errors"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// ErrProcessLimit 存活进程数已达上限
var ErrProcessLimit = errors.New("process limit reached")

// Result 命令执行结果
type Result struct {
	Type       CommandType
	PID        int  // 被创建或终止的进程
	Terminated bool // 终止命令是否真正终止了进程
	Snapshot   *memory.Snapshot
}

// CommandDispatcher 内存管理器的唯一串行化边界
//
// 定时器和键盘两个goroutine都通过Dispatch访问管理器，
// 管理器内部的算法不支持细粒度并发修改。
type CommandDispatcher struct {
	mu      sync.Mutex
	manager *memory.Manager
}

// NewCommandDispatcher 创建命令分发器
func NewCommandDispatcher(manager *memory.Manager) *CommandDispatcher {
	return &CommandDispatcher{manager: manager}
}

// Dispatch 执行一条命令
//
// 准入失败(swap区已满)已经记录在事件日志中，仍以错误返回给调用方。
func (d *CommandDispatcher) Dispatch(cmd Command) (*Result, error) {
	if cmd == nil {
		return nil, errors.NotValidf("nil command")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	result := &Result{Type: cmd.Type()}
	switch c := cmd.(type) {
	case AdmitCommand:
		result.PID = c.Spec.PID
		if c.Limit > 0 && d.manager.LiveCount() >= c.Limit {
			d.manager.RecordEvent("[ERROR] Process limit (%d) reached", c.Limit)
			return result, errors.Annotatef(ErrProcessLimit, "admit P%d (limit %d)", c.Spec.PID, c.Limit)
		}
		if err := d.manager.Admit(c.Spec); err != nil {
			return result, errors.Annotatef(err, "admit P%d", c.Spec.PID)
		}
	case TerminateRandomCommand:
		result.PID, result.Terminated = d.manager.TerminateRandom()
	case TerminateCommand:
		result.PID = c.PID
		result.Terminated = d.manager.Terminate(c.PID)
	case SetPolicyCommand:
		if err := d.manager.SetPolicy(c.Policy); err != nil {
			return result, errors.Trace(err)
		}
	case SnapshotCommand:
		result.Snapshot = d.manager.Snapshot()
	default:
		return nil, errors.NotSupportedf("command %s", cmd.Type())
	}
	logger.Debugf("dispatched %s", cmd.Type())
	return result, nil
}

// Snapshot 获取状态快照
func (d *CommandDispatcher) Snapshot() *memory.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.manager.Snapshot()
}

// RecordEvent 在事件日志中追加一条驱动层的消息
func (d *CommandDispatcher) RecordEvent(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manager.RecordEvent(format, args...)
}

// LiveCount 存活进程数
func (d *CommandDispatcher) LiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.manager.LiveCount()
}

// PageSize 页大小
func (d *CommandDispatcher) PageSize() int {
	return d.manager.PageSize()
}

// Policy 当前置换算法
func (d *CommandDispatcher) Policy() memory.ReplacementPolicy {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.manager.Policy()
}
