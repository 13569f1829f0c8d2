package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestURLBuilderJoinsSegmentsWithSingleSlash(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"http://10.0.0.2:8080/apps", []string{"YouTube"}, "http://10.0.0.2:8080/apps/YouTube"},
		{"http://10.0.0.2:8080/apps/", []string{"YouTube"}, "http://10.0.0.2:8080/apps/YouTube"},
		{"http://10.0.0.2:8080/apps//", []string{"/YouTube/", "run"}, "http://10.0.0.2:8080/apps/YouTube/run"},
		{"http://10.0.0.2:8080", []string{"Netflix"}, "http://10.0.0.2:8080/Netflix"},
		{"http://10.0.0.2:8080/apps/YouTube/run", []string{"hide"}, "http://10.0.0.2:8080/apps/YouTube/run/hide"},
	}
	for _, tt := range tests {
		builder := NewURLBuilder(mustParseURL(t, tt.base))
		for _, segment := range tt.segments {
			builder.Path(segment)
		}
		assert.Equal(t, tt.want, builder.Build().String(), "base %s", tt.base)
	}
}

func TestURLBuilderEscapesQueryAndKeepsBaseQuery(t *testing.T) {
	base := mustParseURL(t, "http://10.0.0.2:8080/apps?token=abc#frag")
	got := NewURLBuilder(base).Path("YouTube").Query("friendlyName", "Living Room & Co").Build()

	assert.Equal(t, "/apps/YouTube", got.Path)
	assert.Equal(t, "token=abc&friendlyName=Living+Room+%26+Co", got.RawQuery)
	assert.Empty(t, got.Fragment)
	assert.Equal(t, "Living Room & Co", got.Query().Get("friendlyName"))
	// 基础地址不会被修改
	assert.Equal(t, "http://10.0.0.2:8080/apps?token=abc#frag", base.String())
}

func TestURLBuilderWithoutSegments(t *testing.T) {
	got := NewURLBuilder(mustParseURL(t, "http://10.0.0.2:8080/")).Query("clientDialVersion", "2.1").Build()
	assert.Equal(t, "http://10.0.0.2:8080/?clientDialVersion=2.1", got.String())
}
