package configs

// DIAL 协议层可调参数

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// 协议层默认值
const (
	DefaultHTTPConnectTimeout   = 1500 * time.Millisecond
	DefaultHTTPReadTimeout      = 1500 * time.Millisecond
	DefaultSocketTimeout        = 1500 * time.Millisecond
	DefaultMSearchResponseDelay = 0 // 秒
	DefaultClientFriendlyName   = "godial"
)

// 读取协议配置的环境变量名
const (
	EnvHTTPConnectTimeout   = "DIAL_HTTP_CONNECT_TIMEOUT_MS"
	EnvHTTPReadTimeout      = "DIAL_HTTP_READ_TIMEOUT_MS"
	EnvSocketTimeout        = "DIAL_SOCKET_TIMEOUT_MS"
	EnvMSearchResponseDelay = "DIAL_MSEARCH_RESPONSE_DELAY"
	EnvLegacyCompatibility  = "DIAL_LEGACY"
	EnvClientFriendlyName   = "DIAL_CLIENT_NAME"
	EnvMulticastInterface   = "DIAL_INTERFACE"
)

// ProtocolSettings 汇总了发现与应用控制时用到的参数
type ProtocolSettings struct {
	// 兼容旧版服务端，开启后不再发送 clientDialVersion / friendlyName 查询参数
	LegacyCompatibility bool
	// HTTP 建立连接超时，0 表示不设置
	HTTPConnectTimeout time.Duration
	// HTTP 读取响应超时，0 表示不设置
	HTTPReadTimeout time.Duration
	// M-SEARCH 接收应答的套接字超时，超时即结束本轮发现
	SocketTimeout time.Duration
	// M-SEARCH 中的 MX 值，单位为秒
	MSearchResponseDelay int
	// 启动应用时告知服务端的客户端名称
	ClientFriendlyName string
	// 加入组播组使用的网卡名，空串表示由系统决定
	MulticastInterface string
}

// DefaultProtocolSettings 返回默认协议参数
func DefaultProtocolSettings() ProtocolSettings {
	return ProtocolSettings{
		LegacyCompatibility:  false,
		HTTPConnectTimeout:   DefaultHTTPConnectTimeout,
		HTTPReadTimeout:      DefaultHTTPReadTimeout,
		SocketTimeout:        DefaultSocketTimeout,
		MSearchResponseDelay: DefaultMSearchResponseDelay,
		ClientFriendlyName:   DefaultClientFriendlyName,
	}
}

// Validate 检查参数是否合法
func (s ProtocolSettings) Validate() error {
	if s.SocketTimeout <= 0 {
		return fmt.Errorf("socket timeout must be positive, got %s", s.SocketTimeout)
	}
	if s.HTTPConnectTimeout < 0 || s.HTTPReadTimeout < 0 {
		return fmt.Errorf("http timeouts must not be negative")
	}
	if s.MSearchResponseDelay < 0 {
		return fmt.Errorf("M-SEARCH response delay must not be negative, got %d", s.MSearchResponseDelay)
	}
	return nil
}

// LoadProtocolSettingsFromEnv 在默认值之上叠加环境变量中的配置
//
// 未设置的变量保持默认值，非法的值会返回带变量名的错误
func LoadProtocolSettingsFromEnv() (ProtocolSettings, error) {
	settings := DefaultProtocolSettings()
	if err := overlayMillis(EnvHTTPConnectTimeout, &settings.HTTPConnectTimeout); err != nil {
		return settings, err
	}
	if err := overlayMillis(EnvHTTPReadTimeout, &settings.HTTPReadTimeout); err != nil {
		return settings, err
	}
	if err := overlayMillis(EnvSocketTimeout, &settings.SocketTimeout); err != nil {
		return settings, err
	}
	if v := os.Getenv(EnvMSearchResponseDelay); v != "" {
		delay, err := strconv.Atoi(v)
		if err != nil || delay < 0 {
			return settings, fmt.Errorf("invalid %s %q, should be a non-negative integer", EnvMSearchResponseDelay, v)
		}
		settings.MSearchResponseDelay = delay
	}
	if v := os.Getenv(EnvLegacyCompatibility); v != "" {
		legacy, err := strconv.ParseBool(v)
		if err != nil {
			return settings, fmt.Errorf("invalid %s %q: %w", EnvLegacyCompatibility, v, err)
		}
		settings.LegacyCompatibility = legacy
	}
	if v := os.Getenv(EnvClientFriendlyName); v != "" {
		settings.ClientFriendlyName = v
	}
	settings.MulticastInterface = os.Getenv(EnvMulticastInterface)
	return settings, nil
}

// overlayMillis 把以毫秒为单位的环境变量写入 target
func overlayMillis(name string, target *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms < 0 {
		return fmt.Errorf("invalid %s %q, should be a non-negative integer (milliseconds)", name, v)
	}
	*target = time.Duration(ms) * time.Millisecond
	return nil
}
