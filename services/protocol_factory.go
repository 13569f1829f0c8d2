package services

// 根据协议配置创建各个协议组件

import (
	"context"
	"net/url"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/entities"
)

// MSearcher 执行一次 M-SEARCH 发现
type MSearcher interface {
	SendAndReceive(ctx context.Context) ([]*entities.DialServer, error)
}

// DescriptorResolver 解析设备描述
type DescriptorResolver interface {
	GetDescriptor(ctx context.Context, location *url.URL) entities.Result[*entities.DeviceDescriptor]
}

// ApplicationController 是针对一台设备的应用控制操作
type ApplicationController interface {
	GetApplication(ctx context.Context, applicationName string) entities.Result[*entities.Application]
	StartApplication(ctx context.Context, applicationName string, content *entities.DialContent) (*url.URL, error)
	StopApplication(ctx context.Context, instanceURL *url.URL) error
	HideApplication(ctx context.Context, instanceURL *url.URL) error
}

// ProtocolFactory 创建发现与应用控制用到的协议组件
type ProtocolFactory interface {
	CreateMSearch() MSearcher
	CreateDeviceDescriptorResource() DescriptorResolver
	CreateApplicationResource(clientFriendlyName string, applicationResourceURL *url.URL) ApplicationController
}

// DefaultProtocolFactory 按 ProtocolSettings 创建真实的网络组件
type DefaultProtocolFactory struct {
	settings configs.ProtocolSettings
}

// NewProtocolFactory 创建 DefaultProtocolFactory
func NewProtocolFactory(settings configs.ProtocolSettings) *DefaultProtocolFactory {
	return &DefaultProtocolFactory{settings: settings}
}

// Settings 返回工厂使用的协议配置
func (f *DefaultProtocolFactory) Settings() configs.ProtocolSettings {
	return f.settings
}

func (f *DefaultProtocolFactory) CreateMSearch() MSearcher {
	ms := NewMSearch(f.settings.MSearchResponseDelay, f.settings.SocketTimeout)
	ms.SetInterface(f.settings.MulticastInterface)
	return ms
}

func (f *DefaultProtocolFactory) CreateDeviceDescriptorResource() DescriptorResolver {
	return NewDeviceDescriptorResource(f.settings.HTTPConnectTimeout, f.settings.HTTPReadTimeout)
}

func (f *DefaultProtocolFactory) CreateApplicationResource(clientFriendlyName string, applicationResourceURL *url.URL) ApplicationController {
	resource := NewApplicationResource(clientFriendlyName, applicationResourceURL)
	resource.SetSendQueryParameter(!f.settings.LegacyCompatibility)
	resource.SetTimeouts(f.settings.HTTPConnectTimeout, f.settings.HTTPReadTimeout)
	return resource
}
