package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	case "":
		return "", fmt.Errorf("cannot infer catalog format (missing extension)")
	default:
		return "", fmt.Errorf("cannot infer catalog format from file extension %q", filepath.Ext(path))
	}
}

// Axis is a named dimension of choice with its allowed values in declaration
// order.
type Axis struct {
	Name   string
	Values []string
}

// Catalog is the read-only set of option axes loaded from a template's option
// document. Keys whose value is not a list of strings are not axes and are
// dropped at load time.
type Catalog struct {
	path  string
	axes  []Axis
	index map[string]int
}

func New(axes ...Axis) *Catalog {
	c := &Catalog{index: make(map[string]int, len(axes))}
	for _, a := range axes {
		c.add(a)
	}
	return c
}

func (c *Catalog) add(a Axis) {
	values := append([]string(nil), a.Values...)
	if i, ok := c.index[a.Name]; ok {
		c.axes[i].Values = values
		return
	}
	c.index[a.Name] = len(c.axes)
	c.axes = append(c.axes, Axis{Name: a.Name, Values: values})
}

// Path is the document the catalog was loaded from, if any.
func (c *Catalog) Path() string {
	return c.path
}

// Axes returns a copy of all axes in declaration order.
func (c *Catalog) Axes() []Axis {
	out := make([]Axis, len(c.axes))
	for i, a := range c.axes {
		out[i] = Axis{Name: a.Name, Values: append([]string(nil), a.Values...)}
	}
	return out
}

func (c *Catalog) Axis(name string) (Axis, bool) {
	i, ok := c.index[name]
	if !ok {
		return Axis{}, false
	}
	a := c.axes[i]
	return Axis{Name: a.Name, Values: append([]string(nil), a.Values...)}, true
}

// Require reports a *Error for the first named axis that is absent, has no
// values, or lists an empty or repeated value.
func (c *Catalog) Require(names ...string) error {
	for _, name := range names {
		a, ok := c.Axis(name)
		if !ok {
			return &Error{Path: c.path, Axis: name, Err: ErrMissingAxis}
		}
		if len(a.Values) == 0 {
			return &Error{Path: c.path, Axis: name, Err: ErrEmptyAxis}
		}
		if err := checkValues(name, a.Values); err != nil {
			var ce *Error
			if errors.As(err, &ce) {
				ce.Path = c.path
			}
			return err
		}
	}
	return nil
}

// Load reads the catalog document at path.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	c, err := Parse(buf, format)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
			return nil, ce
		}
		return nil, &Error{Path: path, Err: err}
	}
	c.path = path
	return c, nil
}

// Parse decodes a catalog document held in memory.
func Parse(data []byte, format Format) (*Catalog, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return nil, &Error{Err: fmt.Errorf("%w: unsupported format %q", ErrMalformed, format)}
	}
}

func parseJSON(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed(fmt.Errorf("top-level value must be an object"))
	}

	c := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Errorf("unexpected token %v", tok))
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed(fmt.Errorf("key %q: %v", key, err))
		}
		var items []*string
		if err := json.Unmarshal(raw, &items); err != nil {
			// Scalars, objects and lists of objects are template variables,
			// not option axes.
			continue
		}
		values := make([]string, 0, len(items))
		for i, v := range items {
			if v == nil {
				return nil, malformedAxis(key, fmt.Errorf("value %d is null", i))
			}
			values = append(values, *v)
		}
		if err := checkValues(key, values); err != nil {
			return nil, err
		}
		c.add(Axis{Name: key, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(fmt.Errorf("trailing data after catalog object"))
	}
	return c, nil
}

func parseYAML(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, malformed(fmt.Errorf("empty document"))
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(fmt.Errorf("top-level value must be a mapping"))
	}

	c := New()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			continue
		}
		values := make([]string, 0, len(val.Content))
		scalar := true
		for _, item := range val.Content {
			if item.Kind != yaml.ScalarNode {
				scalar = false
				break
			}
			if item.ShortTag() == "!!null" {
				return nil, malformedAxis(key.Value, fmt.Errorf("value %d is null", len(values)))
			}
			values = append(values, item.Value)
		}
		if !scalar {
			continue
		}
		if err := checkValues(key.Value, values); err != nil {
			return nil, err
		}
		c.add(Axis{Name: key.Value, Values: values})
	}
	return c, nil
}

func malformed(err error) error {
	return &Error{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}

func malformedAxis(axis string, err error) error {
	return &Error{Axis: axis, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}

// checkValues rejects empty and repeated values; either would put a blank or
// duplicate configuration into the matrix.
func checkValues(axis string, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			return malformedAxis(axis, fmt.Errorf("empty value"))
		}
		if seen[v] {
			return malformedAxis(axis, fmt.Errorf("duplicate value %q", v))
		}
		seen[v] = true
	}
	return nil
}
