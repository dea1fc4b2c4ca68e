package docdiff

// Identity is the concrete Document for `guarantor.schemas:Identity`
// (§3): an address paired with an open property bag.
type Identity struct {
	Address string
	Props   map[string]interface{}
}

var _ Document = Identity{}

func newIdentity(fields map[string]interface{}) Document {
	id := Identity{Props: map[string]interface{}{}}
	if addr, ok := fields["address"].(string); ok {
		id.Address = addr
	}
	if props, ok := fields["props"].(map[string]interface{}); ok {
		id.Props = props
	}
	return id
}

// Doctype implements Document.
func (Identity) Doctype() string {
	return "guarantor.schemas:Identity"
}

// Fields implements Document.
func (i Identity) Fields() map[string]interface{} {
	return map[string]interface{}{
		"address": i.Address,
		"props":   i.Props,
	}
}
