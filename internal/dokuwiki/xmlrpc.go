package dokuwiki

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Minimal XML-RPC wire types, just enough for the DokuWiki methods the
// bot uses.

type methodResponse struct {
	XMLName xml.Name `xml:"methodResponse"`
	Params  []value  `xml:"params>param>value"`
	Fault   *fault   `xml:"fault"`
}

type fault struct {
	Value value `xml:"value"`
}

// message extracts faultString, falling back to a generic label.
func (f *fault) message() string {
	if f.Value.Struct == nil {
		return "unknown fault"
	}
	for _, m := range f.Value.Struct.Members {
		if m.Name == "faultString" && m.Value.String != nil {
			return *m.Value.String
		}
	}
	return "unknown fault"
}

type value struct {
	String  *string  `xml:"string"`
	Int     *int     `xml:"int"`
	Boolean *string  `xml:"boolean"`
	Array   *array   `xml:"array"`
	Struct  *xstruct `xml:"struct"`
}

type array struct {
	Values []value `xml:"data>value"`
}

type xstruct struct {
	Members []member `xml:"member"`
}

type member struct {
	Name  string `xml:"name"`
	Value value  `xml:"value"`
}

// marshalCall renders a methodCall document with string parameters.
func marshalCall(method string, args []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, fmt.Errorf("escape method: %w", err)
	}
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param><value><string>")
		if err := xml.EscapeText(&buf, []byte(arg)); err != nil {
			return nil, fmt.Errorf("escape param: %w", err)
		}
		buf.WriteString("</string></value></param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}
