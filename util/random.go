package util

import (
	"sync/atomic"
	"time"
)

const (
	multiplier = int64(0x5DEECE66D)

	mask int64 = (1 << 48) - 1

	addend int64 = 0xB

	uniquifierStep int64 = 1181783497276652981
)

var seedUniquifier int64 = 8682522807148012

// Random 线性同余随机数发生器(与java.util.Random相同的参数)
// 非并发安全，调用方需要自行串行化
type Random struct {
	seed int64
}

// NewRandom 使用给定种子创建随机数发生器
func NewRandom(seed int64) *Random {
	return &Random{seed: (seed ^ multiplier) & mask}
}

// NewTimeSeededRandom 使用当前时间作为种子，连续创建的实例种子也各不相同
func NewTimeSeededRandom() *Random {
	return NewRandom(nextUniquifier() ^ time.Now().UTC().UnixNano())
}

func nextUniquifier() int64 {
	for {
		current := atomic.LoadInt64(&seedUniquifier)
		next := current * uniquifierStep
		if atomic.CompareAndSwapInt64(&seedUniquifier, current, next) {
			return next
		}
	}
}

func (r *Random) next(bits uint) int64 {
	r.seed = (r.seed*multiplier + addend) & mask
	return r.seed >> (48 - bits)
}

// Intn 返回[0,n)内的均匀分布整数，n<=0时panic
func (r *Random) Intn(n int) int {
	if n <= 0 {
		panic("util: Intn called with non-positive bound")
	}
	bound := int64(n)
	if bound&(-bound) == bound {
		return int((bound * r.next(31)) >> 31)
	}
	for {
		u := r.next(31)
		v := u % bound
		if u-v+(bound-1) < (1 << 31) {
			return int(v)
		}
	}
}
