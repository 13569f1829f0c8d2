package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somebottle/godial/entities"
)

const deviceDescriptionXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:dial-multiscreen-org:device:dial:1</deviceType>
    <friendlyName>Living Room TV</friendlyName>
  </device>
</root>`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func newDescriptorServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGetDescriptor(t *testing.T) {
	server := newDescriptorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/dd.xml", r.URL.Path)
		w.Header().Set("Application-URL", "http://192.168.1.20:8008/apps/")
		fmt.Fprint(w, deviceDescriptionXML)
	})
	resource := NewDeviceDescriptorResource(time.Second, time.Second)

	result := resource.GetDescriptor(context.Background(), mustURL(t, server.URL+"/dd.xml"))
	descriptor, ok := result.Get()
	require.True(t, ok, result.Reason)
	assert.Equal(t, "http://192.168.1.20:8008/apps/", descriptor.ApplicationResourceURL.String())
	assert.Equal(t, "Living Room TV", descriptor.FriendlyName)
}

func TestGetDescriptorRelativeApplicationURL(t *testing.T) {
	server := newDescriptorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Application-URL", "/apps/")
		fmt.Fprint(w, deviceDescriptionXML)
	})
	result := NewDeviceDescriptorResource(0, 0).GetDescriptor(context.Background(), mustURL(t, server.URL+"/ssdp/dd.xml"))
	descriptor, ok := result.Get()
	require.True(t, ok)
	assert.Equal(t, server.URL+"/apps/", descriptor.ApplicationResourceURL.String())
}

func TestGetDescriptorUnparsableBodyKeepsDevice(t *testing.T) {
	server := newDescriptorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Application-URL", "http://192.168.1.20:8008/apps")
		fmt.Fprint(w, "not xml at all")
	})
	result := NewDeviceDescriptorResource(0, 0).GetDescriptor(context.Background(), mustURL(t, server.URL))
	descriptor, ok := result.Get()
	require.True(t, ok)
	assert.Empty(t, descriptor.FriendlyName)
}

func TestGetDescriptorAbsent(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"missing header": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, deviceDescriptionXML)
		},
		"not found": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Application-URL", "http://192.168.1.20:8008/apps")
			w.WriteHeader(http.StatusNotFound)
		},
		"malformed header": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Application-URL", "http://[::1")
			fmt.Fprint(w, deviceDescriptionXML)
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := newDescriptorServer(t, handler)
			result := NewDeviceDescriptorResource(0, 0).GetDescriptor(context.Background(), mustURL(t, server.URL))
			assert.Equal(t, entities.ResultAbsent, result.Status)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestGetDescriptorUnsupportedLocation(t *testing.T) {
	resource := NewDeviceDescriptorResource(0, 0)
	result := resource.GetDescriptor(context.Background(), mustURL(t, "https://192.168.1.20/dd.xml"))
	assert.Equal(t, entities.ResultAbsent, result.Status)

	result = resource.GetDescriptor(context.Background(), nil)
	assert.Equal(t, entities.ResultAbsent, result.Status)
}

func TestGetDescriptorTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	location := mustURL(t, server.URL)
	server.Close()

	result := NewDeviceDescriptorResource(time.Second, time.Second).GetDescriptor(context.Background(), location)
	assert.Equal(t, entities.ResultFailed, result.Status)
	assert.Error(t, result.Err)
}
