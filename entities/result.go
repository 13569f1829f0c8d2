package entities

// 读取类操作的结果

import "fmt"

// ResultStatus 表示一次读取的结果类型
type ResultStatus int

const (
	// 成功拿到了值
	ResultFound ResultStatus = iota + 1
	// 服务端给出了明确的 "没有"，比如非 200 状态码或文档不合法
	ResultAbsent
	// 传输层出错，没能拿到服务端的答复
	ResultFailed
)

func (s ResultStatus) String() string {
	switch s {
	case ResultFound:
		return "found"
	case ResultAbsent:
		return "absent"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("ResultStatus(%d)", int(s))
	}
}

// Result 把 "找到 / 不存在 / 出错" 三种情况显式区分开
type Result[T any] struct {
	Status ResultStatus
	Value  T
	// 不存在时的原因
	Reason string
	// 出错时的错误
	Err error
}

// Found 构造一个成功的结果
func Found[T any](value T) Result[T] {
	return Result[T]{Status: ResultFound, Value: value}
}

// Absent 构造一个不存在的结果
func Absent[T any](format string, args ...any) Result[T] {
	return Result[T]{Status: ResultAbsent, Reason: fmt.Sprintf(format, args...)}
}

// Failed 构造一个出错的结果
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: ResultFailed, Reason: err.Error(), Err: err}
}

// Ok 判断是否拿到了值
func (r Result[T]) Ok() bool {
	return r.Status == ResultFound
}

// Get 返回值以及是否存在，不区分不存在和出错
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Status == ResultFound
}
