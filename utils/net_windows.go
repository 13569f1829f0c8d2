//go:build windows

package utils

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// Windows 下的网络相关工具函数

// ListenPacketWithREUSEADDR 创建一个启用套接字 SO_REUSEADDR 选项的 PacketConn
//
// network: 网络类型 (如 "udp4")
// address: 监听地址 (如 ":1900")
func ListenPacketWithREUSEADDR(ctx context.Context, network string, address string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var controlErr error
			if err := c.Control(func(fd uintptr) {
				controlErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			return controlErr
		},
	}
	return lc.ListenPacket(ctx, network, address)
}
