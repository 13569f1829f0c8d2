package services

// 面向调用方的 DIAL 客户端

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/entities"
)

// DialClient 创建到 DIAL 设备的连接
type DialClient struct {
	factory            ProtocolFactory
	clientFriendlyName string
	wakeOnLan          *WakeOnLan
}

// NewDialClient 创建 DialClient
func NewDialClient(factory ProtocolFactory) *DialClient {
	return &DialClient{
		factory:            factory,
		clientFriendlyName: configs.DefaultClientFriendlyName,
		wakeOnLan:          NewWakeOnLan(""),
	}
}

// SetClientFriendlyName 设置启动应用时告知服务端的客户端名称
func (c *DialClient) SetClientFriendlyName(name string) {
	c.clientFriendlyName = name
}

// SetWakeOnLan 替换网络唤醒的实现
func (c *DialClient) SetWakeOnLan(wakeOnLan *WakeOnLan) {
	c.wakeOnLan = wakeOnLan
}

// ConnectTo 创建到设备的连接，设备必须已经解析出应用资源地址
func (c *DialClient) ConnectTo(server *entities.DialServer) (*DialClientConnection, error) {
	if server == nil || !server.Controllable() {
		return nil, ErrNotControllable
	}
	return NewDialClientConnection(c.factory.CreateApplicationResource(c.clientFriendlyName, server.ApplicationResourceURL)), nil
}

// WakeUp 向设备发送魔术包，并在设备有描述地址时等待其上线
func (c *DialClient) WakeUp(ctx context.Context, server *entities.DialServer) error {
	if server == nil || !server.WakeOnLanSupport || server.WakeOnLanMAC == "" {
		return &DialClientError{Op: "wake", Err: ErrNoWakeOnLan}
	}
	if err := c.wakeOnLan.Send(ctx, server.WakeOnLanMAC); err != nil {
		return &DialClientError{Op: "wake", Err: err}
	}
	if server.DeviceDescriptorURL == nil {
		return nil
	}
	resolver := c.factory.CreateDeviceDescriptorResource()
	if err := c.wakeOnLan.WaitForDevice(ctx, resolver, server.DeviceDescriptorURL, server.WakeOnLanTimeout); err != nil {
		return &DialClientError{Op: "wake", Err: err}
	}
	return nil
}

// DialClientConnection 是到一台设备的连接
//
// 只读查询出错时一律视为不存在；启动、停止、隐藏失败时返回 DialClientError
type DialClientConnection struct {
	resource ApplicationController
}

// NewDialClientConnection 用给定的应用控制实现创建连接
func NewDialClientConnection(resource ApplicationController) *DialClientConnection {
	return &DialClientConnection{resource: resource}
}

// SupportsApplication 判断设备是否支持该应用
func (conn *DialClientConnection) SupportsApplication(ctx context.Context, applicationName string) bool {
	_, ok := conn.GetApplication(ctx, applicationName)
	return ok
}

// GetApplication 查询应用，找不到或出错时返回 false
func (conn *DialClientConnection) GetApplication(ctx context.Context, applicationName string) (*entities.Application, bool) {
	result := conn.resource.GetApplication(ctx, applicationName)
	if result.Status == entities.ResultFailed {
		slog.Warn("Error while getting application", "application", applicationName, "error", result.Err)
	}
	return result.Get()
}

// StartApplication 启动应用，content 为 nil 时不发送数据；返回服务端给出的运行实例地址，可能为 nil
func (conn *DialClientConnection) StartApplication(ctx context.Context, applicationName string, content *entities.DialContent) (*url.URL, error) {
	instanceURL, err := conn.resource.StartApplication(ctx, applicationName, content)
	if err != nil {
		slog.Warn("Error while starting application", "application", applicationName, "error", err)
		return nil, &DialClientError{Op: "start " + applicationName, Err: err}
	}
	return instanceURL, nil
}

// StopInstance 停止一个运行实例，instanceURL 为 nil 时什么也不做
func (conn *DialClientConnection) StopInstance(ctx context.Context, instanceURL *url.URL) error {
	if instanceURL == nil {
		return nil
	}
	if err := conn.resource.StopApplication(ctx, instanceURL); err != nil {
		slog.Warn("Error while stopping the application", "instance", instanceURL.String(), "error", err)
		return &DialClientError{Op: "stop", Err: err}
	}
	return nil
}

// StopApplication 停止应用
//
// 服务端不允许停止时返回错误；已经停止的应用直接返回
func (conn *DialClientConnection) StopApplication(ctx context.Context, application *entities.Application) error {
	if !application.AllowStop {
		return &DialClientError{Op: "stop " + application.Name, Err: ErrStopNotAllowed}
	}
	if application.State == entities.StateStopped {
		return nil
	}
	if application.InstanceURL == nil {
		return &DialClientError{Op: "stop " + application.Name, Err: ErrNoInstance}
	}
	return conn.StopInstance(ctx, application.InstanceURL)
}

// HideApplication 隐藏应用，已经停止或隐藏的应用直接返回
func (conn *DialClientConnection) HideApplication(ctx context.Context, application *entities.Application) error {
	if application.State == entities.StateStopped || application.State == entities.StateHidden {
		return nil
	}
	if application.InstanceURL == nil {
		return &DialClientError{Op: "hide " + application.Name, Err: ErrNoInstance}
	}
	if err := conn.resource.HideApplication(ctx, application.InstanceURL); err != nil {
		slog.Warn("Error while hiding the application", "instance", application.InstanceURL.String(), "error", err)
		return &DialClientError{Op: "hide " + application.Name, Err: err}
	}
	return nil
}
