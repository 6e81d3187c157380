package util

import (
	"github.com/OneOfOne/xxhash"
)

// 将一个键进行Hash
func HashCode(key []byte) uint64 {
	h := xxhash.New64()
	h.Write(key)
	return h.Sum64()
}

// HashPageKey 计算(pid,pageNo)二元组的hash，用作页面索引的键
func HashPageKey(pid int, pageNo int) uint64 {
	var buff = append(ConvertUInt4Bytes(uint32(pid)), ConvertUInt4Bytes(uint32(pageNo))...)
	return HashCode(buff)
}

// DeriveSeed 由主种子和流编号派生出另一个种子，同一主种子的不同流互不相关
func DeriveSeed(seed int64, stream uint32) int64 {
	buff := append(ConvertUInt4Bytes(uint32(seed)), ConvertUInt4Bytes(uint32(uint64(seed)>>32))...)
	buff = append(buff, ConvertUInt4Bytes(stream)...)
	return int64(HashCode(buff))
}
