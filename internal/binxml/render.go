package binxml

import (
	"encoding/xml"
	"strings"

	"github.com/joshuapare/evtxkit/pkg/types"
)

const indent = "  "

// RenderXML renders el as indented XML text. Placeholder elements render
// with a comment in place of their content.
func RenderXML(el *types.Element) string {
	if el == nil {
		return ""
	}
	var sb strings.Builder
	renderElement(&sb, el, 0)
	return sb.String()
}

func renderElement(sb *strings.Builder, el *types.Element, level int) {
	pad := strings.Repeat(indent, level)
	sb.WriteString(pad)
	sb.WriteByte('<')
	sb.WriteString(el.Name)
	for _, a := range el.Attributes {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		escape(sb, a.Value.String())
		sb.WriteByte('"')
	}

	text := el.Text()
	switch {
	case el.Placeholder:
		sb.WriteString("><!-- not decoded: ")
		sb.WriteString(el.Reason)
		sb.WriteString(" --></")
	case len(el.Children) == 0 && text == "":
		sb.WriteString("/>\n")
		return
	case len(el.Children) == 0:
		sb.WriteByte('>')
		escape(sb, text)
		sb.WriteString("</")
	default:
		sb.WriteString(">")
		escape(sb, text)
		sb.WriteByte('\n')
		for _, ch := range el.Children {
			renderElement(sb, ch, level+1)
		}
		sb.WriteString(pad)
		sb.WriteString("</")
	}
	sb.WriteString(el.Name)
	sb.WriteString(">\n")
}

func escape(sb *strings.Builder, s string) {
	// strings.Builder writes never fail.
	_ = xml.EscapeText(sb, []byte(s))
}
