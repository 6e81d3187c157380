package util

func WriteUB4(buf []byte, i uint32) []byte {
	buf = append(buf, byte(i&0xFF))
	buf = append(buf, byte((i>>8)&0xFF))
	buf = append(buf, byte((i>>16)&0xFF))
	buf = append(buf, byte((i>>24)&0xFF))
	return buf
}

func ConvertUInt4Bytes(i uint32) []byte {
	buff := make([]byte, 0)
	rs := WriteUB4(buff, i)
	return rs
}
