package services

// 应用资源：查询、启动、停止、隐藏应用

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/somebottle/godial/constants"
	"github.com/somebottle/godial/entities"
	"github.com/somebottle/godial/utils"
)

// ApplicationResource 针对一台设备的应用资源根地址发起请求
type ApplicationResource struct {
	clientFriendlyName string
	rootURL            *url.URL
	// 是否发送 clientDialVersion / friendlyName 查询参数，兼容旧版服务端时关闭
	sendQueryParameter bool
	httpClient         *http.Client
}

// NewApplicationResource 创建应用资源，rootURL 为设备描述中的 Application-URL
func NewApplicationResource(clientFriendlyName string, rootURL *url.URL) *ApplicationResource {
	return &ApplicationResource{
		clientFriendlyName: clientFriendlyName,
		rootURL:            rootURL,
		sendQueryParameter: true,
		httpClient:         newHTTPClient(0, 0),
	}
}

// SetSendQueryParameter 设置是否发送 DIAL 2.1 的查询参数
func (r *ApplicationResource) SetSendQueryParameter(send bool) {
	r.sendQueryParameter = send
}

// SetTimeouts 设置所有请求的连接超时与读取超时，0 表示不限制
func (r *ApplicationResource) SetTimeouts(connectTimeout time.Duration, readTimeout time.Duration) {
	r.httpClient = newHTTPClient(connectTimeout, readTimeout)
}

// SetHTTPClient 替换使用的 HTTP 客户端
func (r *ApplicationResource) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// RootURL 返回应用资源根地址
func (r *ApplicationResource) RootURL() *url.URL {
	return r.rootURL
}

// GetApplication 查询应用状态
//
// 非 200 或文档不合法时返回 Absent，传输层错误返回 Failed
func (r *ApplicationResource) GetApplication(ctx context.Context, applicationName string) entities.Result[*entities.Application] {
	builder := utils.NewURLBuilder(r.rootURL).Path(applicationName)
	if r.sendQueryParameter {
		builder.Query(constants.QueryClientDialVersion, constants.QueryClientDialVersionValue)
	}
	applicationURL := builder.Build()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, applicationURL.String(), nil)
	if err != nil {
		return entities.Failed[*entities.Application](fmt.Errorf("Failed to create application request: %w", err))
	}
	response, err := r.httpClient.Do(request)
	if err != nil {
		return entities.Failed[*entities.Application](fmt.Errorf("Failed to get application %s: %w", applicationName, err))
	}
	defer discardAndClose(response)

	if response.StatusCode != http.StatusOK {
		slog.Debug("Application not found", "application", applicationName, "status", response.StatusCode)
		return entities.Absent[*entities.Application]("application %s not found, status %d", applicationName, response.StatusCode)
	}
	body, err := readLimitedBody(response)
	if err != nil {
		return entities.Failed[*entities.Application](fmt.Errorf("Failed to read application %s: %w", applicationName, err))
	}
	doc, err := decodeServiceDocument(body)
	if err != nil {
		slog.Warn("Error while parsing application resource response", "application", applicationName, "error", err)
		return entities.Absent[*entities.Application]("invalid application document: %v", err)
	}
	application, err := doc.toApplication(r.rootURL, applicationName)
	if err != nil {
		slog.Warn("Error while parsing application resource response", "application", applicationName, "error", err)
		return entities.Absent[*entities.Application]("invalid application document: %v", err)
	}
	return entities.Found(application)
}

// StartApplication 启动应用，content 为 nil 时不发送请求体
//
// 200 / 201 视为成功，返回 Location 头部中的运行实例地址，服务端没有给出时返回 nil
func (r *ApplicationResource) StartApplication(ctx context.Context, applicationName string, content *entities.DialContent) (*url.URL, error) {
	builder := utils.NewURLBuilder(r.rootURL).Path(applicationName)
	if r.clientFriendlyName != "" && r.sendQueryParameter {
		builder.Query(constants.QueryFriendlyName, r.clientFriendlyName)
	}
	applicationURL := builder.Build()

	var body io.Reader = http.NoBody
	if content != nil && len(content.Data) > 0 {
		body = bytes.NewReader(content.Data)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, applicationURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("Failed to create start request: %w", err)
	}
	// 即使没有请求体也要带上 Content-Length: 0，POST 请求在长度为 0 时也会发送该头部
	request.ContentLength = 0
	if content != nil {
		request.ContentLength = int64(len(content.Data))
		if content.ContentType != "" {
			request.Header.Set(constants.HeaderContentType, content.ContentType)
		}
	}

	response, err := r.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("Failed to start application %s: %w", applicationName, err)
	}
	defer discardAndClose(response)

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusCreated {
		return nil, &ProtocolError{Op: "start", StatusCode: response.StatusCode}
	}
	instanceLocation := response.Header.Get(constants.HeaderInstanceLocation)
	if instanceLocation == "" {
		slog.Debug("Application started without instance location", "application", applicationName)
		return nil, nil
	}
	instanceURL, err := url.Parse(instanceLocation)
	if err != nil {
		return nil, &ProtocolError{Op: "start", Reason: fmt.Sprintf("malformed instance location %q", instanceLocation)}
	}
	instanceURL = applicationURL.ResolveReference(instanceURL)
	slog.Info("Application started", "application", applicationName, "instance", instanceURL.String())
	return instanceURL, nil
}

// StopApplication 以 DELETE 停止运行实例，只有 200 算成功
func (r *ApplicationResource) StopApplication(ctx context.Context, instanceURL *url.URL) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, instanceURL.String(), nil)
	if err != nil {
		return fmt.Errorf("Failed to create stop request: %w", err)
	}
	if err := r.expectOK(request, "stop"); err != nil {
		return err
	}
	slog.Info("Application stopped", "instance", instanceURL.String())
	return nil
}

// HideApplication 向 {instanceUrl}/hide 发送 POST 隐藏运行实例，只有 200 算成功
func (r *ApplicationResource) HideApplication(ctx context.Context, instanceURL *url.URL) error {
	hideURL := utils.NewURLBuilder(instanceURL).Path(constants.HidePathSegment).Build()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, hideURL.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("Failed to create hide request: %w", err)
	}
	if err := r.expectOK(request, "hide"); err != nil {
		return err
	}
	slog.Info("Application hidden", "instance", instanceURL.String())
	return nil
}

// expectOK 发送请求，状态码不是 200 时返回 ProtocolError
func (r *ApplicationResource) expectOK(request *http.Request, op string) error {
	response, err := r.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("Failed to %s application: %w", op, err)
	}
	defer discardAndClose(response)
	if response.StatusCode != http.StatusOK {
		return &ProtocolError{Op: op, StatusCode: response.StatusCode}
	}
	return nil
}
