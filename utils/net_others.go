//go:build !unix && !windows

package utils

import (
	"context"
	"net"
)

// ListenPacketWithREUSEADDR 在不支持设置套接字选项的平台上退化为普通监听
func ListenPacketWithREUSEADDR(ctx context.Context, network string, address string) (net.PacketConn, error) {
	var lc net.ListenConfig
	return lc.ListenPacket(ctx, network, address)
}
