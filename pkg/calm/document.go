package calm

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archview/pkg/errors"
)

// Top-level document keys.
const (
	FieldNodes         = "nodes"
	FieldRelationships = "relationships"
	FieldFlows         = "flows"
)

// Document is a decoded architecture or pattern document. The zero value is
// an empty document.
type Document struct {
	Object
}

// NewDocument wraps a decoded mapping.
func NewDocument(o Object) Document { return Document{Object: o} }

// IsEmpty reports whether the document has no nodes.
func (d Document) IsEmpty() bool { return len(d.List(FieldNodes)) == 0 }

// Nodes returns the raw node entries. Each entry is either a node or an
// alternatives slot; see [Alternatives].
func (d Document) Nodes() []Object { return d.Objects(FieldNodes) }

// Relationships returns the raw relationship entries.
func (d Document) Relationships() []Object { return d.Objects(FieldRelationships) }

// Flows returns the raw flow entries.
func (d Document) Flows() []Object { return d.Objects(FieldFlows) }

// Parse decodes a JSON or YAML document. Empty input yields an empty
// document. Input that decodes to something other than a mapping is an
// ErrCodeInvalidDocument error.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, nil
	}

	var raw any
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode JSON")
		}
	} else if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode YAML")
	}

	if raw == nil {
		return Document{}, nil
	}
	o, ok := AsObject(raw)
	if !ok {
		return Document{}, errors.New(errors.ErrCodeInvalidDocument, "document must be an object, got %T", raw)
	}
	return Document{Object: o}, nil
}

// ReadDocument decodes a document from r. It does not close r.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
	}
	return Parse(data)
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, errors.Wrap(errors.GetCode(err), err, "parse %s", path)
	}
	return doc, nil
}
