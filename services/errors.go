package services

// DIAL 协议层与客户端层的错误类型

import (
	"errors"
	"fmt"
)

var (
	// ErrStopNotAllowed 表示服务端没有允许客户端停止该应用
	ErrStopNotAllowed = errors.New("the application doesn't support stopping")
	// ErrNoInstance 表示应用没有可操作的运行实例地址
	ErrNoInstance = errors.New("the application has no instance url")
	// ErrNoWakeOnLan 表示设备不支持网络唤醒
	ErrNoWakeOnLan = errors.New("the server doesn't support wake on lan")
	// ErrNotControllable 表示设备还没有应用资源地址
	ErrNotControllable = errors.New("the server has no application resource url")
)

// ProtocolError 表示 DIAL 服务端的答复不符合预期
type ProtocolError struct {
	// 出错的操作，如 start / stop / hide
	Op string
	// 服务端返回的状态码，0 表示不是状态码导致的错误
	StatusCode int
	// 附加说明
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("could not %s the application. Status: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("could not %s the application: %s", e.Op, e.Reason)
}

// DialClientError 是客户端层变更操作 (启动 / 停止 / 隐藏 / 唤醒) 失败时唯一对外的错误类型
type DialClientError struct {
	Op  string
	Err error
}

func (e *DialClientError) Error() string {
	return fmt.Sprintf("dial client: %s: %v", e.Op, e.Err)
}

func (e *DialClientError) Unwrap() error {
	return e.Err
}

// StatusCode 返回底层 ProtocolError 的状态码，没有时返回 0
func (e *DialClientError) StatusCode() int {
	var protocolErr *ProtocolError
	if errors.As(e.Err, &protocolErr) {
		return protocolErr.StatusCode
	}
	return 0
}
