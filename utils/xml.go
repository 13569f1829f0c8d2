package utils

// 解析来自网络的、不可信的小型 XML 文档

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsafeXML 表示文档中带有 DOCTYPE / ENTITY 声明，直接拒绝而不是尝试展开
var ErrUnsafeXML = errors.New("xml document declares a DOCTYPE or ENTITY")

// newStrictDecoder 创建只认识 XML 预定义实体的解码器
func newStrictDecoder(r io.Reader) *xml.Decoder {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	decoder.Entity = nil
	return decoder
}

// checkDirective 拒绝 DOCTYPE 与 ENTITY 声明
func checkDirective(directive xml.Directive) error {
	upper := strings.ToUpper(strings.TrimSpace(string(directive)))
	if strings.HasPrefix(upper, "DOCTYPE") || strings.HasPrefix(upper, "ENTITY") {
		return ErrUnsafeXML
	}
	return nil
}

// ReadXMLTagTexts 把文档读成 "标签名 -> 文本" 的扁平映射
//
// 同名标签只保留文档中第一次出现的那个，文本包含所有子孙节点的文本；标签名不带命名空间前缀
func ReadXMLTagTexts(r io.Reader, maxBytes int64) (map[string]string, error) {
	decoder := newStrictDecoder(io.LimitReader(r, maxBytes))
	texts := make(map[string]string)
	type openElement struct {
		name string
		text strings.Builder
	}
	var stack []*openElement
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Failed to parse xml document: %w", err)
		}
		switch t := token.(type) {
		case xml.Directive:
			if err := checkDirective(t); err != nil {
				return nil, err
			}
		case xml.StartElement:
			stack = append(stack, &openElement{name: t.Name.Local})
		case xml.CharData:
			for _, element := range stack {
				element.text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, exists := texts[top.name]; !exists {
				texts[top.name] = strings.TrimSpace(top.text.String())
			}
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("Failed to parse xml document: no elements")
	}
	return texts, nil
}

// DecodeSafeXML 检查文档中没有 DOCTYPE / ENTITY 声明后再解码到 v
func DecodeSafeXML(data []byte, v any) error {
	scanner := newStrictDecoder(bytes.NewReader(data))
	for {
		token, err := scanner.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("Failed to parse xml document: %w", err)
		}
		if directive, ok := token.(xml.Directive); ok {
			if err := checkDirective(directive); err != nil {
				return err
			}
		}
	}
	if err := newStrictDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("Failed to decode xml document: %w", err)
	}
	return nil
}
