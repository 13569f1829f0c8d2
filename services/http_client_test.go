package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/entities"
)

const testReadTimeout = 150 * time.Millisecond

// newStallingServer 返回一个卡住的服务端
//
// beforeHeaders 为 true 时在发送响应头之前卡住，否则先发送响应头和部分响应体再卡住
func newStallingServer(t *testing.T, beforeHeaders bool) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !beforeHeaders {
			w.Header().Set("Application-URL", "http://192.168.1.20:8008/apps")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `<?xml version="1.0"?><service><name>YouTube</name>`)
			w.(http.Flusher).Flush()
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	// 先放行卡住的请求，再关闭服务端
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

// assertCutOff 检查请求在读取超时的两倍时间内结束
func assertCutOff(t *testing.T, started time.Time) {
	t.Helper()
	assert.Less(t, time.Since(started), 2*testReadTimeout+100*time.Millisecond)
}

func TestReadTimeoutLimitsGetApplication(t *testing.T) {
	for _, beforeHeaders := range []bool{true, false} {
		t.Run(fmt.Sprintf("beforeHeaders=%t", beforeHeaders), func(t *testing.T) {
			server := newStallingServer(t, beforeHeaders)
			resource := NewApplicationResource("Phone", mustURL(t, server.URL+"/apps"))
			resource.SetTimeouts(time.Second, testReadTimeout)

			started := time.Now()
			result := resource.GetApplication(context.Background(), "YouTube")
			assertCutOff(t, started)
			assert.Equal(t, entities.ResultFailed, result.Status)
			assert.Error(t, result.Err)
		})
	}
}

func TestReadTimeoutLimitsStartApplication(t *testing.T) {
	server := newStallingServer(t, true)
	resource := NewApplicationResource("Phone", mustURL(t, server.URL+"/apps"))
	resource.SetTimeouts(time.Second, testReadTimeout)

	started := time.Now()
	instanceURL, err := resource.StartApplication(context.Background(), "YouTube", nil)
	assertCutOff(t, started)
	require.Error(t, err)
	assert.Nil(t, instanceURL)
}

func TestReadTimeoutLimitsGetDescriptor(t *testing.T) {
	for _, beforeHeaders := range []bool{true, false} {
		t.Run(fmt.Sprintf("beforeHeaders=%t", beforeHeaders), func(t *testing.T) {
			server := newStallingServer(t, beforeHeaders)
			resource := NewDeviceDescriptorResource(time.Second, testReadTimeout)

			started := time.Now()
			result := resource.GetDescriptor(context.Background(), mustURL(t, server.URL+"/dd.xml"))
			assertCutOff(t, started)
			assert.Equal(t, entities.ResultFailed, result.Status)
		})
	}
}

func TestReadTimeoutFromProtocolFactory(t *testing.T) {
	server := newStallingServer(t, false)
	settings := configs.DefaultProtocolSettings()
	settings.HTTPReadTimeout = testReadTimeout
	factory := NewProtocolFactory(settings)

	started := time.Now()
	result := factory.CreateApplicationResource("Phone", mustURL(t, server.URL+"/apps")).GetApplication(context.Background(), "YouTube")
	assertCutOff(t, started)
	assert.Equal(t, entities.ResultFailed, result.Status)
}

func TestSlowButSteadyBodyIsNotCutOff(t *testing.T) {
	// 每次读取都在超时内有数据到达，总耗时超过读取超时也不算失败
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		for _, part := range []string{"<service>", "<name>YouTube</name>", "<state>running</state>", "</service>"} {
			fmt.Fprint(w, part)
			w.(http.Flusher).Flush()
			time.Sleep(testReadTimeout / 2)
		}
	}))
	defer server.Close()
	resource := NewApplicationResource("Phone", mustURL(t, server.URL+"/apps"))
	resource.SetTimeouts(time.Second, testReadTimeout)

	application, ok := resource.GetApplication(context.Background(), "YouTube").Get()
	require.True(t, ok)
	assert.Equal(t, entities.StateRunning, application.State)
}
