package docdiff

// GenericDocument is the concrete Document for
// `guarantor.schemas:GenericDocument` (§3): a title paired with an open
// property bag.
type GenericDocument struct {
	Title string
	Props map[string]interface{}
}

var _ Document = GenericDocument{}

func newGenericDocument(fields map[string]interface{}) Document {
	doc := GenericDocument{Props: map[string]interface{}{}}
	if title, ok := fields["title"].(string); ok {
		doc.Title = title
	}
	if props, ok := fields["props"].(map[string]interface{}); ok {
		doc.Props = props
	}
	return doc
}

// Doctype implements Document.
func (GenericDocument) Doctype() string {
	return "guarantor.schemas:GenericDocument"
}

// Fields implements Document.
func (g GenericDocument) Fields() map[string]interface{} {
	return map[string]interface{}{
		"title": g.Title,
		"props": g.Props,
	}
}
