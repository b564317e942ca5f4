package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseTemplate parses template markup as strict XML and returns its document
// element. Text between elements is kept; comments and processing
// instructions are dropped. Anything but a single well-formed root element is
// an error.
func ParseTemplate(raw string) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.Strict = true

	var root, current *Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed template markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElement(qualify(t.Name))
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attribute{Key: qualify(a.Name), Value: a.Value})
			}
			if current == nil {
				if root != nil {
					return nil, fmt.Errorf("malformed template markup: multiple root elements")
				}
				root = el
			} else {
				current.AppendChild(el)
			}
			current = el
		case xml.EndElement:
			if current == nil {
				return nil, fmt.Errorf("malformed template markup: unexpected closing tag %s", qualify(t.Name))
			}
			current = current.Parent
		case xml.CharData:
			if current == nil {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("malformed template markup: text outside the root element")
				}
				continue
			}
			current.AppendChild(NewText(string(t)))
		}
	}

	if root == nil {
		return nil, fmt.Errorf("malformed template markup: no root element")
	}
	if current != nil {
		return nil, fmt.Errorf("malformed template markup: unclosed element %s", current.Tag)
	}
	return root, nil
}

func qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
