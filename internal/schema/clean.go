package schema

// Cleaner normalizes the top level of a schema document before it is
// published.
type Cleaner interface {
	Clean(doc *Node) *Node
}

// CleanerFunc adapts a function to the Cleaner interface.
type CleanerFunc func(doc *Node) *Node

// Clean calls f(doc).
func (f CleanerFunc) Clean(doc *Node) *Node {
	return f(doc)
}

// strippedKeys are top-level fields that make no sense once a document is
// embedded in an API specification.
var strippedKeys = []string{"$schema", "definitions"}

// DefaultCleaner drops the top-level $schema and definitions fields.
var DefaultCleaner Cleaner = CleanerFunc(CleanTopLevel)

// CleanTopLevel returns a copy of doc without its $schema and definitions
// fields. Non-object documents are copied unchanged.
func CleanTopLevel(doc *Node) *Node {
	out := doc.Clone()
	if !out.IsObject() {
		return out
	}
	for _, k := range strippedKeys {
		out.Delete(k)
	}
	return out
}
