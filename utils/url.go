package utils

// 请求地址的拼接工具

import (
	"net/url"
	"strings"
)

const pathSeparator = "/"

// URLBuilder 以一个基础地址为起点，依次追加路径段和查询参数
type URLBuilder struct {
	base     url.URL
	segments []string
	query    []string
}

// NewURLBuilder 以 base 为基础地址创建 URLBuilder，base 自带的查询参数会被保留
func NewURLBuilder(base *url.URL) *URLBuilder {
	b := &URLBuilder{base: *base}
	b.base.Fragment = ""
	b.base.RawFragment = ""
	if base.RawQuery != "" {
		b.query = append(b.query, strings.Split(base.RawQuery, "&")...)
	}
	b.base.RawQuery = ""
	return b
}

// Path 追加一个路径段，段与段之间只保留一个分隔符
func (b *URLBuilder) Path(segment string) *URLBuilder {
	b.segments = append(b.segments, segment)
	return b
}

// Query 追加一个 key=value 查询参数，value 会被转义
func (b *URLBuilder) Query(key string, value string) *URLBuilder {
	b.query = append(b.query, url.QueryEscape(key)+"="+url.QueryEscape(value))
	return b
}

// Build 生成最终地址，不会修改基础地址
func (b *URLBuilder) Build() *url.URL {
	u := b.base
	joined := strings.TrimRight(u.Path, pathSeparator)
	for _, segment := range b.segments {
		segment = strings.Trim(segment, pathSeparator)
		if segment == "" {
			continue
		}
		joined += pathSeparator + segment
	}
	if joined == "" && len(b.segments) == 0 {
		joined = u.Path
	}
	u.Path = joined
	u.RawPath = ""
	u.RawQuery = strings.Join(b.query, "&")
	return &u
}
