package services

// 网络唤醒 (Wake-on-LAN)

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/utils"
)

// magicPacketRepeat 是魔术包中 MAC 地址重复的次数
const magicPacketRepeat = 16

// BuildMagicPacket 生成魔术包：6 个 0xFF 之后接 16 次 MAC 地址
func BuildMagicPacket(mac net.HardwareAddr) []byte {
	packet := make([]byte, 0, 6+magicPacketRepeat*len(mac))
	packet = append(packet, bytes.Repeat([]byte{0xFF}, 6)...)
	for i := 0; i < magicPacketRepeat; i++ {
		packet = append(packet, mac...)
	}
	return packet
}

// WakeOnLan 发送魔术包并等待设备上线
type WakeOnLan struct {
	broadcastAddr string
	pollInterval  time.Duration
}

// NewWakeOnLan 创建 WakeOnLan，broadcastAddr 为空时使用 255.255.255.255:9
func NewWakeOnLan(broadcastAddr string) *WakeOnLan {
	if broadcastAddr == "" {
		broadcastAddr = configs.WakeOnLanBroadcastAddr
	}
	return &WakeOnLan{
		broadcastAddr: broadcastAddr,
		pollInterval:  configs.WakeOnLanPollInterval * time.Millisecond,
	}
}

// SetPollInterval 设置等待设备上线时的探测间隔
func (w *WakeOnLan) SetPollInterval(interval time.Duration) {
	w.pollInterval = interval
}

// Send 向广播地址发送唤醒 mac 的魔术包
func (w *WakeOnLan) Send(ctx context.Context, mac string) error {
	hardwareAddr, err := utils.ParseMAC(mac)
	if err != nil {
		return err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp4", w.broadcastAddr)
	if err != nil {
		return fmt.Errorf("Failed to open wake on lan socket: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write(BuildMagicPacket(hardwareAddr)); err != nil {
		return fmt.Errorf("Failed to send magic packet: %w", err)
	}
	slog.Info("Magic packet sent", "mac", hardwareAddr.String(), "to", w.broadcastAddr)
	return nil
}

// WaitForDevice 反复请求设备描述，直到解析成功或超过 timeout
func (w *WakeOnLan) WaitForDevice(ctx context.Context, resolver DescriptorResolver, location *url.URL, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = configs.WakeOnLanDefaultTimeout * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		result := resolver.GetDescriptor(waitCtx, location)
		if result.Ok() {
			return nil
		}
		slog.Debug("Device not ready yet", "location", location.String(), "reason", result.Reason)
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("device %s did not come up within %s: %w", location, timeout, waitCtx.Err())
		case <-ticker.C:
		}
	}
}
