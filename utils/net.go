package utils

import (
	"fmt"
	"net"
)

// GetOutboundIP 获取本机的首选出站 IP 地址 (而不是 Docker, 虚拟网卡等)
//
// 对 UDP 来说 Dial 不会真的发出数据包，只是让系统选出路由
func GetOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("Failed to get outbound IP address: %w", err)
	}
	defer conn.Close()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP, nil
}

// GetInterfaceByIP 根据给定的 IP 地址获取对应的网络接口
// 返回 (*net.Interface, error)：找到的网络接口指针，如果未找到则返回 nil；如果发生错误，返回错误
func GetInterfaceByIP(ip net.IP) (*net.Interface, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iFace := range interfaces {
		addrs, err := iFace.Addrs()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
				return &iFace, nil
			}
		}
	}
	return nil, nil
}

// ResolveMulticastInterface 决定加入组播组时使用的网卡
//
// name 非空时按名称查找；为空时尝试使用首选出站 IP 所在的网卡，找不到就返回 nil 交给系统决定
func ResolveMulticastInterface(name string) (*net.Interface, error) {
	if name != "" {
		iFace, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("Failed to get interface %s: %w", name, err)
		}
		return iFace, nil
	}
	outboundIP, err := GetOutboundIP()
	if err != nil {
		// 没有默认路由时交给系统
		return nil, nil
	}
	iFace, err := GetInterfaceByIP(outboundIP)
	if err != nil {
		return nil, nil
	}
	return iFace, nil
}
