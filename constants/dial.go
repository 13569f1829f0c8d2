package constants

// DIAL 协议中出现在报文里的字面量

const (
	// SSDP 组播地址与端口
	MulticastIPv4 = "239.255.255.250"
	MulticastPort = 1900
	// DIAL 服务的 search target
	SearchTarget = "urn:dial-multiscreen-org:service:dial:1"
	// M-SEARCH 请求里附带的 USER-AGENT
	SearchUserAgent = "OS/version product/version"
)

// M-SEARCH 应答中认识的头部，比较时统一为大写
const (
	HeaderLocation = "LOCATION"
	HeaderUSN      = "USN"
	HeaderWakeup   = "WAKEUP"
	HeaderServer   = "SERVER"
	// WAKEUP 头部内的子键
	WakeupMAC     = "MAC"
	WakeupTimeout = "TIMEOUT"
)

// HTTP 资源相关的头部与参数
const (
	// 设备描述响应里指向应用资源根路径的头部
	HeaderApplicationURL = "Application-URL"
	HeaderContentType    = "Content-Type"
	// 启动应用后返回实例地址的头部
	HeaderInstanceLocation = "Location"

	QueryClientDialVersion      = "clientDialVersion"
	QueryClientDialVersionValue = "2.1"
	QueryFriendlyName           = "friendlyName"

	// 隐藏应用实例时追加的路径
	HidePathSegment = "hide"
)

// 应用状态文档中的状态值 (小写)
const (
	StateRunning     = "running"
	StateStopped     = "stopped"
	StateHidden      = "hidden"
	StateInstallable = "installable"
	// installable=<url> 中的分隔符
	InstallURLSeparator = "="
)

// LinkRelationRun 是应用状态文档里指向运行实例的 link 关系
const LinkRelationRun = "run"
