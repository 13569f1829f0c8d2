package services

// 发现流程：M-SEARCH 之后逐台解析设备描述

import (
	"context"
	"log/slog"

	"github.com/somebottle/godial/entities"
)

// Discovery 找出本地网络中支持 DIAL 且能解析设备描述的设备
type Discovery struct {
	factory ProtocolFactory
}

// NewDiscovery 创建 Discovery
func NewDiscovery(factory ProtocolFactory) *Discovery {
	return &Discovery{factory: factory}
}

// Discover 执行一次发现，不会返回错误
//
// M-SEARCH 失败时返回空列表；设备描述解析失败或未解析的设备会被剔除。
// 设备描述是逐台串行获取的，返回顺序没有保证
func (d *Discovery) Discover(ctx context.Context) []*entities.DialServer {
	servers, err := d.factory.CreateMSearch().SendAndReceive(ctx)
	if err != nil {
		slog.Warn("Error while discovering devices", "error", err)
		return []*entities.DialServer{}
	}
	resolver := d.factory.CreateDeviceDescriptorResource()
	resolved := make([]*entities.DialServer, 0, len(servers))
	for _, server := range servers {
		result := resolver.GetDescriptor(ctx, server.DeviceDescriptorURL)
		descriptor, ok := result.Get()
		if !ok {
			slog.Warn("Dropping device without usable descriptor",
				"usn", server.UniqueServiceName, "status", result.Status.String(), "reason", result.Reason)
			continue
		}
		server.FriendlyName = descriptor.FriendlyName
		server.ApplicationResourceURL = descriptor.ApplicationResourceURL
		resolved = append(resolved, server)
	}
	return resolved
}
