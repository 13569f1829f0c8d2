package services

// DIAL 资源共用的 HTTP 客户端

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/somebottle/godial/configs"
)

// readDeadlineConn 在每次 Read 前重新设置读取期限，响应头和响应体都受 readTimeout 限制
type readDeadlineConn struct {
	net.Conn
	readTimeout time.Duration
}

func (c *readDeadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

// newHTTPClient 创建 HTTP 客户端
//
// connectTimeout 限制建立连接的时间，readTimeout 限制每一次从连接读取的等待时间，为 0 时不限制；
// 每次请求使用新连接，不复用
func newHTTPClient(connectTimeout time.Duration, readTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	dialContext := dialer.DialContext
	if readTimeout > 0 {
		dialContext = func(ctx context.Context, network string, address string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, address)
			if err != nil {
				return nil, err
			}
			return &readDeadlineConn{Conn: conn, readTimeout: readTimeout}, nil
		}
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialContext,
			ResponseHeaderTimeout: readTimeout,
			DisableKeepAlives:     true,
		},
	}
}

// readLimitedBody 读取响应体，最多 HTTPResponseBodyMaxSize 字节
func readLimitedBody(response *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(response.Body, configs.HTTPResponseBodyMaxSize))
}

// discardAndClose 丢弃剩余响应体并关闭，响应体是一定要关闭的
func discardAndClose(response *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, configs.HTTPResponseBodyMaxSize))
	_ = response.Body.Close()
}
