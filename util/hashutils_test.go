package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPageKey(t *testing.T) {
	assert.Equal(t, HashPageKey(1, 2), HashPageKey(1, 2))
	assert.NotEqual(t, HashPageKey(1, 2), HashPageKey(2, 1))
	assert.Equal(t, HashCode(append(ConvertUInt4Bytes(7), ConvertUInt4Bytes(3)...)), HashPageKey(7, 3))
}

func TestConvertUInt4Bytes(t *testing.T) {
	assert.Equal(t, []byte{0x80, 0, 0, 0}, ConvertUInt4Bytes(128))
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, ConvertUInt4Bytes(0x01020304))
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, DeriveSeed(42, 1), DeriveSeed(42, 1))
	assert.NotEqual(t, DeriveSeed(42, 0), DeriveSeed(42, 1))
	assert.NotEqual(t, int64(42), DeriveSeed(42, 1))

	// 同一主种子的两个流不应产生相同的序列
	a := NewRandom(42)
	b := NewRandom(DeriveSeed(42, 1))
	same := 0
	for i := 0; i < 100; i++ {
		if a.Intn(100) == b.Intn(100) {
			same++
		}
	}
	assert.Less(t, same, 50)
}
