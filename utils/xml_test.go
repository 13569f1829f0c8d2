package utils

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deviceDescriptionFixture = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <device>
    <deviceType>urn:dial-multiscreen-org:device:dial:1</deviceType>
    <friendlyName>Living Room TV</friendlyName>
    <manufacturer>Example</manufacturer>
    <embedded><friendlyName>Inner</friendlyName></embedded>
  </device>
</root>`

func TestReadXMLTagTexts(t *testing.T) {
	texts, err := ReadXMLTagTexts(strings.NewReader(deviceDescriptionFixture), 1<<20)
	require.NoError(t, err)

	assert.Equal(t, "Living Room TV", texts["friendlyName"])
	assert.Equal(t, "Example", texts["manufacturer"])
	assert.Equal(t, "1", texts["major"])
	// 文本包含子孙节点
	assert.Equal(t, "10", texts["specVersion"])
}

func TestReadXMLTagTextsRejectsDoctype(t *testing.T) {
	doc := `<?xml version="1.0"?><!DOCTYPE root [<!ENTITY x "boom">]><root><friendlyName>&x;</friendlyName></root>`
	_, err := ReadXMLTagTexts(strings.NewReader(doc), 1<<20)
	assert.ErrorIs(t, err, ErrUnsafeXML)
}

func TestReadXMLTagTextsErrors(t *testing.T) {
	_, err := ReadXMLTagTexts(strings.NewReader(""), 1<<20)
	assert.Error(t, err)

	_, err = ReadXMLTagTexts(strings.NewReader("<root><a></root>"), 1<<20)
	assert.Error(t, err)

	// 超出长度限制的文档会被截断，从而无法解析
	_, err = ReadXMLTagTexts(strings.NewReader(deviceDescriptionFixture), 64)
	assert.Error(t, err)
}

func TestDecodeSafeXML(t *testing.T) {
	type doc struct {
		XMLName xml.Name `xml:"service"`
		Name    string   `xml:"name"`
	}
	var got doc
	require.NoError(t, DecodeSafeXML([]byte(`<service><name>YouTube</name></service>`), &got))
	assert.Equal(t, "YouTube", got.Name)

	err := DecodeSafeXML([]byte(`<!DOCTYPE service SYSTEM "file:///etc/passwd"><service><name>x</name></service>`), &got)
	assert.ErrorIs(t, err, ErrUnsafeXML)

	err = DecodeSafeXML([]byte(`<service><name>&nbsp;</name></service>`), &got)
	assert.Error(t, err)
}
