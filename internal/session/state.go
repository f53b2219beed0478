package session

// State 是会话管理器的状态。
type State int

const (
	Idle State = iota
	// Composing 表示已暂存附件。
	Composing
	// Sending 表示有一次交换正在进行。
	Sending
	// Error 表示上一次建立对话失败；下一次操作照常进行。
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Composing:
		return "composing"
	case Sending:
		return "sending"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
