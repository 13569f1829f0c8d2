package services

// 基于 SSDP M-SEARCH 的 DIAL 设备发现

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/constants"
	"github.com/somebottle/godial/entities"
	"github.com/somebottle/godial/utils"
	"golang.org/x/net/ipv4"
)

// MulticastTransport 是 M-SEARCH 收发数据报用到的连接
type MulticastTransport interface {
	ReadFrom(b []byte) (n int, addr net.Addr, err error)
	WriteTo(b []byte, dst net.Addr) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// TransportOpener 打开一个已经加入组播组的连接
type TransportOpener func(ctx context.Context) (MulticastTransport, error)

// MSearch 发送一次 M-SEARCH 请求，并收集超时前到达的所有 DIAL 应答
type MSearch struct {
	request       []byte
	socketTimeout time.Duration
	interfaceName string
	openTransport TransportOpener
}

// NewMSearch 创建 MSearch
//
// responseDelay: M-SEARCH 中的 MX 值，单位为秒
// socketTimeout: 每次接收应答的超时，超时即结束本轮发现
func NewMSearch(responseDelay int, socketTimeout time.Duration) *MSearch {
	ms := &MSearch{
		request:       []byte(buildSearchRequest(responseDelay)),
		socketTimeout: socketTimeout,
	}
	ms.openTransport = ms.openMulticastTransport
	return ms
}

// buildSearchRequest 生成 M-SEARCH 请求报文
func buildSearchRequest(responseDelay int) string {
	host := net.JoinHostPort(constants.MulticastIPv4, strconv.Itoa(constants.MulticastPort))
	return "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + host + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: " + strconv.Itoa(responseDelay) + "\r\n" +
		"ST: " + constants.SearchTarget + "\r\n" +
		"USER-AGENT: " + constants.SearchUserAgent + "\r\n\r\n"
}

// SetInterface 指定加入组播组的网卡名，空串表示自动选择
func (ms *MSearch) SetInterface(name string) {
	ms.interfaceName = name
}

// SetTransportOpener 替换打开连接的方式，测试时用来注入假的连接
func (ms *MSearch) SetTransportOpener(opener TransportOpener) {
	ms.openTransport = opener
}

// Request 返回将要发送的 M-SEARCH 报文
func (ms *MSearch) Request() string {
	return string(ms.request)
}

// openMulticastTransport 绑定 0.0.0.0:1900 (复用地址) 并加入 SSDP 组播组
func (ms *MSearch) openMulticastTransport(ctx context.Context) (MulticastTransport, error) {
	iFace, err := utils.ResolveMulticastInterface(ms.interfaceName)
	if err != nil {
		return nil, err
	}
	// 直接用 net.ListenMulticastUDP 没法设置地址复用，只能先绑定端口，然后再加入组播组
	pc, err := utils.ListenPacketWithREUSEADDR(ctx, "udp4", ":"+strconv.Itoa(constants.MulticastPort))
	if err != nil {
		return nil, fmt.Errorf("Error creating UDP4 packet connection: %w", err)
	}
	p4 := ipv4.NewPacketConn(pc)
	if err := p4.JoinGroup(iFace, &net.UDPAddr{IP: net.ParseIP(constants.MulticastIPv4)}); err != nil {
		p4.Close()
		return nil, fmt.Errorf("Error joining IPv4 multicast group: %w", err)
	}
	if iFace != nil {
		if err := p4.SetMulticastInterface(iFace); err != nil {
			slog.Debug("Failed to set multicast interface", "interface", iFace.Name, "error", err)
		}
	}
	if err := p4.SetMulticastTTL(configs.MulticastTTL); err != nil {
		slog.Debug("Failed to set multicast TTL", "error", err)
	}
	interfaceName := ""
	if iFace != nil {
		interfaceName = iFace.Name
	}
	slog.Debug("Joined Multicast Group", "address", constants.MulticastIPv4, "port", constants.MulticastPort, "interface", interfaceName)
	return &entities.PacketConn{IPv4Conn: p4}, nil
}

// SendAndReceive 发送 M-SEARCH 并接收应答，直到一次接收超时
//
// 应答按 USN 去重，同一 USN 只保留最先到达的那个。超时是唯一的结束条件，
// 其他 IO 错误会原样返回；ctx 被取消时关闭连接并返回 ctx 的错误
func (ms *MSearch) SendAndReceive(ctx context.Context) ([]*entities.DialServer, error) {
	conn, err := ms.openTransport(ctx)
	if err != nil {
		return nil, err
	}
	// 通知协程停止的通道
	receiveDone := make(chan struct{})
	defer func() {
		close(receiveDone)
		conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			// 被取消时关闭连接，让阻塞中的读取立刻返回
			conn.Close()
		case <-receiveDone:
		}
	}()

	groupAddr := &net.UDPAddr{IP: net.ParseIP(constants.MulticastIPv4), Port: constants.MulticastPort}
	slog.Debug("Send M-SEARCH request", "to", groupAddr.String())
	if _, err := conn.WriteTo(ms.request, groupAddr); err != nil {
		return nil, fmt.Errorf("Error sending M-SEARCH request: %w", err)
	}

	discovered := make(map[string]*entities.DialServer)
	var ordered []*entities.DialServer
	buf := make([]byte, configs.MulticastReadBufferSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(ms.socketTimeout)); err != nil {
			return nil, fmt.Errorf("Error setting read deadline: %w", err)
		}
		n, remoteAddr, err := conn.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				slog.Debug("M-SEARCH receive timed out", "devices", len(ordered))
				return ordered, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("Error receiving M-SEARCH response: %w", err)
		}
		server, ok := parseSearchResponse(buf[:n])
		if !ok {
			continue
		}
		if _, exists := discovered[server.UniqueServiceName]; exists {
			continue
		}
		from := ""
		if remoteAddr != nil {
			from = remoteAddr.String()
		}
		slog.Info("Found device", "usn", server.UniqueServiceName, "location", server.DeviceDescriptorURL.String(), "from", from)
		discovered[server.UniqueServiceName] = server
		ordered = append(ordered, server)
	}
}

// parseSearchResponse 把一个应答数据报解析为 DialServer
//
// 只接受包含 DIAL search target 的应答，且必须同时有合法的 LOCATION 和非空的 USN
func parseSearchResponse(data []byte) (*entities.DialServer, bool) {
	text := string(data)
	if !strings.Contains(text, constants.SearchTarget) {
		slog.Debug("Ignore response for unrelated search target")
		return nil, false
	}
	server := &entities.DialServer{}
	for _, row := range strings.Split(text, "\n") {
		headerParts := strings.SplitN(strings.TrimRight(row, "\r"), ": ", 2)
		if len(headerParts) != 2 {
			continue
		}
		headerName := strings.ToUpper(strings.TrimSpace(headerParts[0]))
		headerValue := strings.TrimSpace(headerParts[1])
		switch headerName {
		case constants.HeaderLocation:
			parseDeviceDescriptorURL(server, headerValue)
		case constants.HeaderUSN:
			server.UniqueServiceName = headerValue
		case constants.HeaderWakeup:
			parseWakeupHeader(server, headerValue)
		case constants.HeaderServer:
			server.ServerDescription = headerValue
		default:
			slog.Debug("Ignoring unknown header", "header", headerName)
		}
	}
	if server.DeviceDescriptorURL == nil || server.UniqueServiceName == "" {
		slog.Debug("Ignore response with incomplete data", "usn", server.UniqueServiceName)
		return nil, false
	}
	return server, true
}

// parseDeviceDescriptorURL 解析 LOCATION 头部，非法地址只丢弃这个头部
func parseDeviceDescriptorURL(server *entities.DialServer, value string) {
	location, err := parseAbsoluteURL(value)
	if err != nil {
		slog.Warn("Server provided malformed device descriptor url", "location", value, "error", err)
		return
	}
	server.DeviceDescriptorURL = location
}

// parseWakeupHeader 解析 WAKEUP: MAC=<mac>;TIMEOUT=<秒>，非法的子项只丢弃该子项
func parseWakeupHeader(server *entities.DialServer, value string) {
	for _, part := range strings.Split(value, ";") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(pair[0]))
		val := strings.TrimSpace(pair[1])
		switch key {
		case constants.WakeupMAC:
			if val == "" {
				slog.Warn("Server provided empty wake on lan MAC")
				continue
			}
			server.WakeOnLanMAC = val
			server.WakeOnLanSupport = true
		case constants.WakeupTimeout:
			seconds, err := strconv.Atoi(val)
			if err != nil || seconds < 0 {
				slog.Warn("Server provided malformed wake on lan timeout", "timeout", val)
				continue
			}
			server.WakeOnLanTimeout = time.Duration(seconds) * time.Second
		default:
			slog.Debug("Ignore unknown wol header", "key", key)
		}
	}
}

// parseAbsoluteURL 解析必须带 scheme 和 host 的绝对地址
func parseAbsoluteURL(value string) (*url.URL, error) {
	parsed, err := url.Parse(value)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", value)
	}
	return parsed, nil
}
