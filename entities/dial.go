package entities

// DIAL 协议相关实体

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/somebottle/godial/constants"
)

// DialServer 是通过 M-SEARCH 发现的一台 DIAL 设备
type DialServer struct {
	// 设备友好名称，仅在设备描述解析成功后才会设置
	FriendlyName string
	// 应用资源的根地址，应用控制必需
	ApplicationResourceURL *url.URL
	// 设备的唯一服务名 (USN)，用于去重
	UniqueServiceName string
	// 设备描述文档地址 (LOCATION)
	DeviceDescriptorURL *url.URL
	// 是否支持网络唤醒
	WakeOnLanSupport bool
	// 网络唤醒使用的 MAC 地址，仅在 WakeOnLanSupport 为 true 时存在
	WakeOnLanMAC string
	// 设备声明的唤醒超时，0 表示未声明
	WakeOnLanTimeout time.Duration
	// SERVER 头部中的描述字符串
	ServerDescription string
}

// Controllable 判断设备是否已经拿到了应用资源地址
func (s *DialServer) Controllable() bool {
	return s.ApplicationResourceURL != nil
}

func (s *DialServer) String() string {
	location := ""
	if s.DeviceDescriptorURL != nil {
		location = s.DeviceDescriptorURL.String()
	}
	return fmt.Sprintf("DialServer{usn=%s, location=%s, name=%q}", s.UniqueServiceName, location, s.FriendlyName)
}

// DeviceDescriptor 是从设备描述中解析出的信息
type DeviceDescriptor struct {
	// Application-URL 头部给出的应用资源根地址
	ApplicationResourceURL *url.URL
	// 描述文档中 friendlyName 元素的文本，缺失时为空串
	FriendlyName string
}

// 常见的应用名
const (
	AppNetflix            = "Netflix"
	AppYouTube            = "YouTube"
	AppAmazonInstantVideo = "AmazonInstantVideo"
)

// State 是应用状态，只有四种合法取值
type State int

const (
	StateRunning State = iota + 1
	StateStopped
	StateHidden
	StateInstallable
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return constants.StateRunning
	case StateStopped:
		return constants.StateStopped
	case StateHidden:
		return constants.StateHidden
	case StateInstallable:
		return constants.StateInstallable
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState 把状态文本映射为 State，大小写不敏感
//
// 以 installable 开头的值 (如 installable=<url>) 都映射为 StateInstallable，其余未知值返回错误
func ParseState(text string) (State, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, constants.StateInstallable) {
		return StateInstallable, nil
	}
	switch lower {
	case constants.StateRunning:
		return StateRunning, nil
	case constants.StateStopped:
		return StateStopped, nil
	case constants.StateHidden:
		return StateHidden, nil
	case "":
		return 0, fmt.Errorf("application exists but has no state")
	default:
		return 0, fmt.Errorf("unknown application state %q", text)
	}
}

// LinkRelation 是应用状态文档中 link 元素的关系类型
type LinkRelation int

const (
	LinkRelationUnknown LinkRelation = iota
	LinkRelationRun
)

// ParseLinkRelation 识别 link 的 rel 属性，无法识别的一律视为 LinkRelationUnknown
func ParseLinkRelation(rel string) LinkRelation {
	switch rel {
	case constants.LinkRelationRun:
		return LinkRelationRun
	default:
		return LinkRelationUnknown
	}
}

// AdditionalData 是应用作者自定义的附加数据，按原样保存的 XML 片段
type AdditionalData struct {
	// additionalData 元素内部的原始标记
	Raw []byte
}

func (d *AdditionalData) String() string {
	return string(d.Raw)
}

// Application 是设备上的一个应用
type Application struct {
	// 服务端返回的应用名
	Name string
	// 应用状态
	State State
	// 客户端是否被允许停止该应用
	AllowStop bool
	// 安装地址，仅在 StateInstallable 时存在
	InstallURL *url.URL
	// 运行实例的地址，仅在服务端返回 rel="run" 的 link 时存在
	InstanceURL *url.URL
	// 应用作者自定义的附加数据，可能为 nil
	AdditionalData *AdditionalData
}

// DialContent 是启动应用时发送给服务端的请求体
//
// 不发送请求体时直接传 nil，而不是一个 Data 为空的 DialContent
type DialContent struct {
	Data        []byte
	ContentType string
}
