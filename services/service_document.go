package services

// 应用状态文档 (<service>) 的读写

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/somebottle/godial/constants"
	"github.com/somebottle/godial/entities"
	"github.com/somebottle/godial/utils"
)

// dialNamespace 是应用状态文档的命名空间
const dialNamespace = "urn:dial-multiscreen-org:schemas:dial"

// serviceDocument 对应 GET {root}/{name} 返回的文档
type serviceDocument struct {
	XMLName        xml.Name           `xml:"service"`
	Xmlns          string             `xml:"xmlns,attr,omitempty"`
	DialVer        string             `xml:"dialVer,attr,omitempty"`
	Name           *string            `xml:"name"`
	Options        *serviceOptions    `xml:"options"`
	State          *string            `xml:"state"`
	Links          []serviceLink      `xml:"link"`
	AdditionalData *serviceAdditional `xml:"additionalData"`
}

type serviceOptions struct {
	AllowStop *string `xml:"allowStop,attr"`
}

type serviceLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// serviceAdditional 原样保存 additionalData 内部的标记
type serviceAdditional struct {
	Inner []byte `xml:",innerxml"`
}

// decodeServiceDocument 解析应用状态文档
func decodeServiceDocument(data []byte) (*serviceDocument, error) {
	doc := &serviceDocument{}
	if err := utils.DecodeSafeXML(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// toApplication 把文档转换为 Application
//
// name 和 state 是必需的，缺失或无法识别时返回错误，不会返回只填了一半的 Application。
// root 和 requestedName 用来拼接运行实例地址 {root}/{requestedName}/{href}
func (doc *serviceDocument) toApplication(root *url.URL, requestedName string) (*entities.Application, error) {
	if doc.Name == nil || strings.TrimSpace(*doc.Name) == "" {
		return nil, &ProtocolError{Op: "get", Reason: "application document has no name"}
	}
	if doc.State == nil {
		return nil, &ProtocolError{Op: "get", Reason: "application exists but has no state"}
	}
	state, err := entities.ParseState(*doc.State)
	if err != nil {
		return nil, &ProtocolError{Op: "get", Reason: err.Error()}
	}
	application := &entities.Application{
		Name:  strings.TrimSpace(*doc.Name),
		State: state,
	}
	if state == entities.StateInstallable {
		application.InstallURL = parseInstallURL(*doc.State)
	}
	if doc.Options != nil && doc.Options.AllowStop != nil {
		application.AllowStop = strings.TrimSpace(*doc.Options.AllowStop) == "true"
	}
	application.InstanceURL = instanceURLFromLinks(root, requestedName, doc.Links)
	if doc.AdditionalData != nil {
		raw := make([]byte, len(doc.AdditionalData.Inner))
		copy(raw, doc.AdditionalData.Inner)
		application.AdditionalData = &entities.AdditionalData{Raw: raw}
	}
	return application, nil
}

// parseInstallURL 从 installable=<url> 中取出安装地址，缺失或非法时返回 nil
func parseInstallURL(state string) *url.URL {
	parts := strings.SplitN(strings.TrimSpace(state), constants.InstallURLSeparator, 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		slog.Warn("Installable application without install url", "state", state)
		return nil
	}
	installURL, err := parseAbsoluteURL(strings.TrimSpace(parts[1]))
	if err != nil {
		slog.Warn("Server provided malformed install url", "state", state, "error", err)
		return nil
	}
	return installURL
}

// instanceURLFromLinks 取第一个 rel="run" 的 link，其它关系记录日志后忽略
func instanceURLFromLinks(root *url.URL, requestedName string, links []serviceLink) *url.URL {
	for _, link := range links {
		switch entities.ParseLinkRelation(link.Rel) {
		case entities.LinkRelationRun:
			if strings.TrimSpace(link.Href) == "" {
				slog.Warn("Run link without href", "application", requestedName)
				return nil
			}
			return utils.NewURLBuilder(root).Path(requestedName).Path(link.Href).Build()
		default:
			slog.Warn("Unknown link type on service", "rel", link.Rel, "application", requestedName)
		}
	}
	return nil
}

// EncodeServiceDocument 把 Application 写回应用状态文档
//
// 运行实例地址会还原为相对 {root}/{name}/ 的 href，不在该前缀下时写入完整地址
func EncodeServiceDocument(application *entities.Application, root *url.URL) ([]byte, error) {
	if application == nil {
		return nil, fmt.Errorf("nil application")
	}
	name := application.Name
	state := application.State.String()
	if application.State == entities.StateInstallable && application.InstallURL != nil {
		state += constants.InstallURLSeparator + application.InstallURL.String()
	}
	allowStop := "false"
	if application.AllowStop {
		allowStop = "true"
	}
	doc := &serviceDocument{
		Xmlns:   dialNamespace,
		DialVer: constants.QueryClientDialVersionValue,
		Name:    &name,
		Options: &serviceOptions{AllowStop: &allowStop},
		State:   &state,
	}
	if application.InstanceURL != nil {
		href := application.InstanceURL.String()
		if root != nil {
			prefix := utils.NewURLBuilder(root).Path(name).Build().String() + "/"
			href = strings.TrimPrefix(href, prefix)
		}
		doc.Links = []serviceLink{{Rel: constants.LinkRelationRun, Href: href}}
	}
	if application.AdditionalData != nil {
		doc.AdditionalData = &serviceAdditional{Inner: application.AdditionalData.Raw}
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Failed to encode application document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
