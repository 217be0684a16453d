// Package hit holds the engine-neutral projection of a single search hit.
package hit

// Attribute is one key/value pair of a hit.
type Attribute struct {
	Key   string
	Value string
}

// Hit is a normalized search hit. It carries no entity-specific schema.
type Hit struct {
	ID         string
	Name       string
	Index      string
	Attributes []Attribute
}

// Attribute returns the value of the first attribute named key.
func (h Hit) Attribute(key string) (string, bool) {
	for _, a := range h.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
