package memory

// EventLog 定长环形事件日志，满时丢弃最旧的条目
type EventLog struct {
	buf   []string
	start int
	size  int
}

func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{buf: make([]string, capacity)}
}

// Push 追加一条事件
func (l *EventLog) Push(msg string) {
	if l.size < len(l.buf) {
		l.buf[(l.start+l.size)%len(l.buf)] = msg
		l.size++
		return
	}
	l.buf[l.start] = msg
	l.start = (l.start + 1) % len(l.buf)
}

func (l *EventLog) Len() int {
	return l.size
}

func (l *EventLog) Cap() int {
	return len(l.buf)
}

// Entries 从旧到新返回全部事件
func (l *EventLog) Entries() []string {
	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// Last 返回最新的一条事件
func (l *EventLog) Last() string {
	if l.size == 0 {
		return ""
	}
	return l.buf[(l.start+l.size-1)%len(l.buf)]
}
