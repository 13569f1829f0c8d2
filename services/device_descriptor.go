package services

// 设备描述资源：拿到应用资源地址和设备友好名称

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/constants"
	"github.com/somebottle/godial/entities"
	"github.com/somebottle/godial/utils"
)

// friendlyNameTag 是设备描述文档中友好名称的元素名
const friendlyNameTag = "friendlyName"

// DeviceDescriptorResource 通过一次 GET 解析设备描述
type DeviceDescriptorResource struct {
	httpClient *http.Client
}

// NewDeviceDescriptorResource 创建设备描述资源，超时为 0 表示不限制
func NewDeviceDescriptorResource(connectTimeout time.Duration, readTimeout time.Duration) *DeviceDescriptorResource {
	return &DeviceDescriptorResource{
		httpClient: newHTTPClient(connectTimeout, readTimeout),
	}
}

// SetHTTPClient 替换使用的 HTTP 客户端
func (r *DeviceDescriptorResource) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// GetDescriptor 获取设备描述
//
// 只支持 http 地址；非 200、缺少 Application-URL 头部都视为未解析 (Absent)，传输层错误为 Failed。
// friendlyName 是尽力而为的，文档无法解析时为空串
func (r *DeviceDescriptorResource) GetDescriptor(ctx context.Context, location *url.URL) entities.Result[*entities.DeviceDescriptor] {
	if location == nil {
		return entities.Absent[*entities.DeviceDescriptor]("no device descriptor url")
	}
	if location.Scheme != "http" {
		slog.Warn("Only http is supported for device descriptor resolution", "location", location.String())
		return entities.Absent[*entities.DeviceDescriptor]("unsupported scheme %q", location.Scheme)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return entities.Failed[*entities.DeviceDescriptor](fmt.Errorf("Failed to create device descriptor request: %w", err))
	}
	response, err := r.httpClient.Do(request)
	if err != nil {
		return entities.Failed[*entities.DeviceDescriptor](fmt.Errorf("Failed to get device descriptor %s: %w", location, err))
	}
	defer discardAndClose(response)

	if response.StatusCode != http.StatusOK {
		slog.Warn("Could not get device descriptor", "location", location.String(), "status", response.StatusCode)
		return entities.Absent[*entities.DeviceDescriptor]("device descriptor status %d", response.StatusCode)
	}
	applicationURLHeader := response.Header.Get(constants.HeaderApplicationURL)
	if applicationURLHeader == "" {
		slog.Warn("Server didn't return application url", "location", location.String())
		return entities.Absent[*entities.DeviceDescriptor]("missing %s header", constants.HeaderApplicationURL)
	}
	applicationURL, err := url.Parse(applicationURLHeader)
	if err != nil {
		slog.Warn("Server returned malformed application url", "applicationUrl", applicationURLHeader, "error", err)
		return entities.Absent[*entities.DeviceDescriptor]("malformed %s header", constants.HeaderApplicationURL)
	}
	descriptor := &entities.DeviceDescriptor{
		// 相对地址按描述文档地址解析
		ApplicationResourceURL: location.ResolveReference(applicationURL),
	}
	// 读取超时等传输层错误要和文档本身无法解析区分开
	body, err := readLimitedBody(response)
	if err != nil {
		return entities.Failed[*entities.DeviceDescriptor](fmt.Errorf("Failed to read device descriptor %s: %w", location, err))
	}
	texts, err := utils.ReadXMLTagTexts(bytes.NewReader(body), configs.HTTPResponseBodyMaxSize)
	if err != nil {
		slog.Warn("Error while parsing device descriptor", "location", location.String(), "error", err)
		return entities.Found(descriptor)
	}
	descriptor.FriendlyName = texts[friendlyNameTag]
	return entities.Found(descriptor)
}
