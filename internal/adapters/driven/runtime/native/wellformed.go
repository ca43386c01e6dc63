package native

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// wellFormed runs a strict token pass over raw. etree reads raw tokens and
// accepts several roots, stray text after the root and repeated attributes.
func wellFormed(raw []byte) error {
	d := xml.NewDecoder(bytes.NewReader(raw))
	d.Strict = true
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					line, _ := d.InputPos()
					return fmt.Errorf("line %d: more than one root element", line)
				}
			}
			if err := uniqueAttrs(t); err != nil {
				line, _ := d.InputPos()
				return fmt.Errorf("line %d: %w", line, err)
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				line, _ := d.InputPos()
				return fmt.Errorf("line %d: text outside the root element", line)
			}
		}
	}
	if roots == 0 {
		return errors.New("document has no root element")
	}
	return nil
}

func uniqueAttrs(el xml.StartElement) error {
	seen := make(map[xml.Name]struct{}, len(el.Attr))
	for _, a := range el.Attr {
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("attribute %q repeated on <%s>", a.Name.Local, el.Name.Local)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}
