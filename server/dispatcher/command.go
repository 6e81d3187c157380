package dispatcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// CommandType 命令类型
type CommandType int

const (
	CMD_ADMIT CommandType = iota
	CMD_TERMINATE_RANDOM
	CMD_TERMINATE
	CMD_SET_POLICY
	CMD_SNAPSHOT
)

func (t CommandType) String() string {
	switch t {
	case CMD_ADMIT:
		return "admit"
	case CMD_TERMINATE_RANDOM:
		return "terminate-random"
	case CMD_TERMINATE:
		return "terminate"
	case CMD_SET_POLICY:
		return "set-policy"
	case CMD_SNAPSHOT:
		return "snapshot"
	default:
		return fmt.Sprintf("command(%d)", int(t))
	}
}

// Command 发往内存管理器的命令
type Command interface {
	Type() CommandType
}

// AdmitCommand 创建进程
type AdmitCommand struct {
	Spec memory.ProcessSpec
	// Limit 存活进程数上限，0表示不限制
	Limit int
}

func (AdmitCommand) Type() CommandType { return CMD_ADMIT }

// TerminateRandomCommand 随机终止一个进程
type TerminateRandomCommand struct{}

func (TerminateRandomCommand) Type() CommandType { return CMD_TERMINATE_RANDOM }

// TerminateCommand 终止指定进程
type TerminateCommand struct {
	PID int
}

func (TerminateCommand) Type() CommandType { return CMD_TERMINATE }

// SetPolicyCommand 切换置换算法
type SetPolicyCommand struct {
	Policy memory.ReplacementPolicy
}

func (SetPolicyCommand) Type() CommandType { return CMD_SET_POLICY }

// SnapshotCommand 获取状态快照
type SnapshotCommand struct{}

func (SnapshotCommand) Type() CommandType { return CMD_SNAPSHOT }

// ParseCommand 解析文本命令
//
//	admit <pid> <name> <size>
//	kill [pid]
//	policy fifo|clock|lru
//	snapshot
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.NotValidf("empty command")
	}

	switch strings.ToLower(fields[0]) {
	case "admit", "new":
		if len(fields) != 4 {
			return nil, errors.NotValidf("admit needs <pid> <name> <size>, got %q", line)
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Annotatef(err, "admit pid %q", fields[1])
		}
		size, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, errors.Annotatef(err, "admit size %q", fields[3])
		}
		if size < 0 {
			return nil, errors.NotValidf("negative size %d", size)
		}
		return AdmitCommand{Spec: memory.ProcessSpec{PID: pid, Name: fields[2], Size: size}}, nil
	case "kill", "terminate":
		if len(fields) == 1 {
			return TerminateRandomCommand{}, nil
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Annotatef(err, "kill pid %q", fields[1])
		}
		return TerminateCommand{PID: pid}, nil
	case "policy":
		if len(fields) != 2 {
			return nil, errors.NotValidf("policy needs one argument, got %q", line)
		}
		p, err := memory.ParsePolicy(fields[1])
		if err != nil {
			return nil, errors.Trace(err)
		}
		return SetPolicyCommand{Policy: p}, nil
	case "snapshot", "show":
		return SnapshotCommand{}, nil
	default:
		return nil, errors.NotSupportedf("command %q", fields[0])
	}
}
