package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/entities"
)

const youtubeDocument = `<?xml version="1.0" encoding="UTF-8"?>
<service xmlns="urn:dial-multiscreen-org:schemas:dial" dialVer="2.1">
  <name>YouTube</name>
  <options allowStop="true"/>
  <state>running</state>
  <link rel="run" href="run"/>
</service>`

// runCLI 执行一次命令并返回标准输出
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	options = cliOptions{}
	t.Setenv(configs.EnvLogFilePath, "")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newAppServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/apps/YouTube":
			fmt.Fprint(w, youtubeDocument)
		case r.Method == http.MethodPost && r.URL.Path == "/apps/YouTube":
			w.Header().Set("Location", "http://"+r.Host+"/apps/YouTube/run")
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete && r.URL.Path == "/apps/YouTube/run":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/apps/YouTube/run/hide":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func TestAppGetCommand(t *testing.T) {
	server, _ := newAppServer(t)
	out, err := runCLI(t, "app", "get", server.URL+"/apps", "YouTube")
	require.NoError(t, err)
	assert.Contains(t, out, "state:      running")
	assert.Contains(t, out, "instance:   "+server.URL+"/apps/YouTube/run")

	out, err = runCLI(t, "app", "get", server.URL+"/apps", "YouTube", "--xml")
	require.NoError(t, err)
	assert.Contains(t, out, `<link rel="run" href="run"></link>`)

	_, err = runCLI(t, "app", "get", server.URL+"/apps", "Netflix")
	assert.Error(t, err)
}

func TestAppLifecycleCommands(t *testing.T) {
	server, seen := newAppServer(t)

	out, err := runCLI(t, "--client-name", "Phone", "app", "start", server.URL+"/apps", "YouTube", "--data", "v=abc")
	require.NoError(t, err)
	assert.Contains(t, out, "YouTube started: "+server.URL+"/apps/YouTube/run")

	_, err = runCLI(t, "app", "hide", server.URL+"/apps", "YouTube")
	require.NoError(t, err)

	_, err = runCLI(t, "app", "stop", server.URL+"/apps", "YouTube")
	require.NoError(t, err)

	_, err = runCLI(t, "app", "stop", server.URL+"/apps", "--instance", server.URL+"/apps/YouTube/run")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /apps/YouTube?friendlyName=Phone",
		"GET /apps/YouTube?clientDialVersion=2.1",
		"POST /apps/YouTube/run/hide",
		"GET /apps/YouTube?clientDialVersion=2.1",
		"DELETE /apps/YouTube/run",
		"DELETE /apps/YouTube/run",
	}, *seen)
}

func TestLegacyFlagOmitsQuery(t *testing.T) {
	server, seen := newAppServer(t)
	_, err := runCLI(t, "--legacy", "app", "get", server.URL+"/apps", "YouTube")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /apps/YouTube"}, *seen)
}

func TestAppCommandArgumentErrors(t *testing.T) {
	_, err := runCLI(t, "app", "get", "not a url", "YouTube")
	assert.Error(t, err)

	_, err = runCLI(t, "app", "stop", "http://127.0.0.1:1/apps")
	assert.Error(t, err)

	_, err = runCLI(t, "--socket-timeout", "0s", "app", "get", "http://127.0.0.1:1/apps", "YouTube")
	assert.Error(t, err)
}

func TestFlagsOverrideSettings(t *testing.T) {
	server, _ := newAppServer(t)
	_, err := runCLI(t, "--http-timeout", "250ms", "--socket-timeout", "2s", "--interface", "eth9",
		"app", "get", server.URL+"/apps", "YouTube")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, settings.HTTPConnectTimeout)
	assert.Equal(t, 250*time.Millisecond, settings.HTTPReadTimeout)
	assert.Equal(t, 2*time.Second, settings.SocketTimeout)
	assert.Equal(t, "eth9", settings.MulticastInterface)
}

func TestDeviceViewJSON(t *testing.T) {
	location, _ := url.Parse("http://192.168.1.20:8008/dd.xml")
	appURL, _ := url.Parse("http://192.168.1.20:8008/apps/")
	view := toDeviceView(&entities.DialServer{
		FriendlyName:           "Living Room TV",
		UniqueServiceName:      "uuid:tv-1",
		DeviceDescriptorURL:    location,
		ApplicationResourceURL: appURL,
		WakeOnLanSupport:       true,
		WakeOnLanMAC:           "10:dd:b1:c9:00:e4",
		WakeOnLanTimeout:       10 * time.Second,
	})
	encoded, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"friendly_name": "Living Room TV",
		"usn": "uuid:tv-1",
		"location": "http://192.168.1.20:8008/dd.xml",
		"application_url": "http://192.168.1.20:8008/apps/",
		"wol_mac": "10:dd:b1:c9:00:e4",
		"wol_timeout": 10
	}`, string(encoded))
}

func TestWakeCommand(t *testing.T) {
	_, err := runCLI(t, "wake", "not-a-mac", "--broadcast", "127.0.0.1:9")
	assert.Error(t, err)

	out, err := runCLI(t, "wake", "10:dd:b1:c9:00:e4", "--broadcast", "127.0.0.1:9")
	require.NoError(t, err)
	assert.Contains(t, out, "Magic packet sent")
}
