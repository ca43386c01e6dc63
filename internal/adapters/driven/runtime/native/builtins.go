package native

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

const (
	defaultFacsimilePath      = "//pb"
	defaultFacsimileAttribute = "facs"
)

func normalizeDefault(_ *Env, doc *etree.Document, _ string) (*etree.Document, error) {
	return doc.Copy(), nil
}

// normalizeTEI narrows a TEI document to its text element, dropping the
// header. Documents without one are kept whole.
func normalizeTEI(_ *Env, doc *etree.Document, _ string) (*etree.Document, error) {
	text := doc.FindElement("//text")
	if text == nil {
		return doc.Copy(), nil
	}
	out := etree.NewDocument()
	out.SetRoot(text.Copy())
	return out, nil
}

func selectEntities(env *Env, doc *etree.Document) ([]domain.Entity, error) {
	var out []domain.Entity
	for _, f := range env.Config.TextData {
		for _, v := range env.values(doc, f.Path, f.Attribute) {
			out = append(out, domain.Entity{Type: f.ID, Value: v})
		}
	}
	return out, nil
}

// selectMetadata takes the first match of every metadata selector and
// converts it to the declared datatype where possible.
func selectMetadata(env *Env, doc *etree.Document, _ string) (map[string]any, error) {
	out := make(map[string]any)
	for _, f := range env.Config.Metadata {
		values := env.values(doc, f.Path, f.Attribute)
		if len(values) == 0 {
			continue
		}
		out[f.ID] = coerce(values[0], f.Datatype)
	}
	return out, nil
}

// pageFacsimiles reads facsimile references from page breaks, by default
// the facs attribute of every pb element.
func pageFacsimiles(env *Env, doc *etree.Document) ([]domain.Facsimile, error) {
	cfg := env.Config.Facsimiles
	path := cfg.Path
	if path == "" {
		path = defaultFacsimilePath
	}
	attr := cfg.Attribute
	if attr == "" {
		attr = defaultFacsimileAttribute
	}

	var out []domain.Facsimile
	for _, ref := range env.values(doc, path, attr) {
		id := strings.TrimPrefix(ref, "#")
		out = append(out, domain.Facsimile{
			ID:       id,
			Versions: []domain.FacsimileVersion{{Path: cfg.Prefix + id + cfg.Suffix}},
		})
	}
	return out, nil
}

// values returns the non-empty attribute values, or text contents when attr
// is empty, of every element matching expr.
func (e *Env) values(doc *etree.Document, expr, attr string) []string {
	if expr == "" {
		return nil
	}
	path, ok := e.Path(expr)
	if !ok {
		return nil
	}

	var out []string
	for _, el := range doc.FindElementsPath(path) {
		var v string
		if attr != "" {
			v = el.SelectAttrValue(attr, "")
		} else {
			v = textContent(el)
		}
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func coerce(v string, dt domain.Datatype) any {
	switch dt {
	case domain.DatatypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case domain.DatatypeFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case domain.DatatypeBoolean:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// textContent concatenates all character data below el in document order.
func textContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}
