package utils

// MAC 地址相关工具

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// macLength 是网络唤醒支持的 MAC 地址字节数 (EUI-48)
const macLength = 6

// ParseMAC 解析 MAC 地址，支持 aa:bb:cc:dd:ee:ff、aa-bb-cc-dd-ee-ff 以及不带分隔符的 12 位十六进制
func ParseMAC(text string) (net.HardwareAddr, error) {
	text = strings.TrimSpace(text)
	if len(text) == macLength*2 {
		raw, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid MAC address %q: %w", text, err)
		}
		return net.HardwareAddr(raw), nil
	}
	mac, err := net.ParseMAC(text)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", text, err)
	}
	if len(mac) != macLength {
		return nil, fmt.Errorf("invalid MAC address %q: expected %d bytes, got %d", text, macLength, len(mac))
	}
	return mac, nil
}
