package types

import "strings"

// Attribute is a name/value pair on an Element. Order is preserved.
type Attribute struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Element is one node of a decoded event tree. Names carry no namespace
// prefix. Value is the element's text content, nil when it has none.
//
// Placeholder marks a subtree that was not decoded; Reason says why. Such
// elements have no attributes or children.
type Element struct {
	Name        string      `json:"name"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Children    []*Element  `json:"children,omitempty"`
	Value       *Value      `json:"value,omitempty"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// LocalName strips an XML namespace prefix ("evt:Event" -> "Event").
func LocalName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Child returns the first child named name, or nil.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path walks Child by Child, returning nil as soon as a step is missing.
func (e *Element) Path(names ...string) *Element {
	cur := e
	for _, n := range names {
		cur = cur.Child(n)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Attr returns the rendered value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value.String(), true
		}
	}
	return "", false
}

// Text returns the rendered text content, "" when there is none.
func (e *Element) Text() string {
	if e == nil || e.Value == nil {
		return ""
	}
	return e.Value.String()
}

// AppendText adds v to the element's text content. A second piece of text
// turns the content into the concatenated string.
func (e *Element) AppendText(v Value) {
	if e.Value == nil {
		e.Value = &v
		return
	}
	if v.IsNull() {
		return
	}
	if e.Value.IsNull() {
		*e.Value = v
		return
	}
	merged := StringValue(e.Value.String() + v.String())
	e.Value = &merged
}

// Walk visits e and its descendants depth-first, stopping when fn returns false.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil {
		return
	}
	stack := []*Element{e}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if !fn(cur) {
			return
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}
