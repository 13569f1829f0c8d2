package entities

// 网络处理相关实体

import (
	"errors"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

// ErrPacketConnNotOpen 表示 PacketConn 中没有底层连接
var ErrPacketConnNotOpen = errors.New("packet connection is not open")

// PacketConn 封装了加入组播组后的 IPv4 数据包连接，包括有 ReadFrom、WriteTo 和 Close 方法
//
// DIAL 只定义了 IPv4 组播地址，所以这里不处理 IPv6
type PacketConn struct {
	IPv4Conn *ipv4.PacketConn
}

// ReadFrom 从连接中读取数据包
func (pc *PacketConn) ReadFrom(b []byte) (n int, addr net.Addr, err error) {
	if pc.IPv4Conn == nil {
		return 0, nil, ErrPacketConnNotOpen
	}
	n, _, addr, err = pc.IPv4Conn.ReadFrom(b)
	return n, addr, err
}

// WriteTo 向目标地址发送一个数据包
func (pc *PacketConn) WriteTo(b []byte, dst net.Addr) (int, error) {
	if pc.IPv4Conn == nil {
		return 0, ErrPacketConnNotOpen
	}
	return pc.IPv4Conn.WriteTo(b, nil, dst)
}

// SetReadDeadline 设置读取超时时刻
func (pc *PacketConn) SetReadDeadline(t time.Time) error {
	if pc.IPv4Conn == nil {
		return ErrPacketConnNotOpen
	}
	return pc.IPv4Conn.SetReadDeadline(t)
}

// Close 关闭连接
func (pc *PacketConn) Close() error {
	if pc.IPv4Conn == nil {
		return nil
	}
	return pc.IPv4Conn.Close()
}
