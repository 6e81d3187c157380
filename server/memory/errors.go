package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrSwapFull swap区已满，无法继续换出
	ErrSwapFull = errors.New("swap area full (50 pages max)")

	// ErrNoFrames 帧表为空时请求置换
	ErrNoFrames = errors.New("no frames configured")

	// ErrInvalidPolicy 未知的置换算法
	ErrInvalidPolicy = errors.New("invalid replacement policy")

	// ErrPIDLeaked 进程号仍被准入失败的进程占用
	ErrPIDLeaked = errors.New("pid still owns leaked frames")
)

// MemoryError 内存管理错误结构
type MemoryError struct {
	Op   string // 操作名称
	PID  int
	Page int
	Err  error // 原始错误
}

func (e *MemoryError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s P%d page %d: %s", e.Op, e.PID, e.Page, e.Err.Error())
}

func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewError 创建新的内存管理错误
func NewError(op string, pid int, page int, err error) error {
	return &MemoryError{
		Op:   op,
		PID:  pid,
		Page: page,
		Err:  err,
	}
}

// IsSwapFull 检查是否为swap区已满错误
func IsSwapFull(err error) bool {
	return errors.Is(err, ErrSwapFull)
}

// IsNoFrames 检查是否为帧表为空错误
func IsNoFrames(err error) bool {
	return errors.Is(err, ErrNoFrames)
}

// IsPIDLeaked 检查是否为进程号被泄漏进程占用的错误
func IsPIDLeaked(err error) bool {
	return errors.Is(err, ErrPIDLeaked)
}
