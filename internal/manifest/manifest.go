// Package manifest is the structured field patcher for per-service deployment
// manifests. Fields are addressed by path (container name -> resources ->
// requests|limits -> cpu|memory), never by line position, and re-encoding
// leaves untouched regions of the document intact.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ResourceGroup addresses one block inside a container's resources mapping.
type ResourceGroup string

const (
	Requests ResourceGroup = "requests"
	Limits   ResourceGroup = "limits"
)

var (
	ErrMalformed         = errors.New("malformed manifest")
	ErrMultiDocument     = errors.New("manifest contains more than one document")
	ErrContainerNotFound = errors.New("container not found")
)

// Document is a parsed single-object manifest. Mutations happen in memory on
// the yaml node tree; Encode serializes the tree back.
type Document struct {
	root *yaml.Node
}

// Parse decodes data into a Document. Multi-document streams and non-mapping
// top levels are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node

	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}

		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var extra yaml.Node

	err := dec.Decode(&extra)
	if err == nil {
		return nil, ErrMultiDocument
	}

	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 ||
		root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformed)
	}

	return &Document{root: &root}, nil
}

// Encode serializes the document back to yaml with kubectl-style two-space
// indentation.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return buf.Bytes(), nil
}

// Name returns metadata.name, or "" if absent.
func (d *Document) Name() string {
	meta := mapValue(d.mapping(), "metadata")
	if meta == nil || meta.Kind != yaml.MappingNode {
		return ""
	}

	name := mapValue(meta, "name")
	if name == nil {
		return ""
	}

	return name.Value
}

// Replicas returns the current spec.replicas value if present.
func (d *Document) Replicas() (int64, bool) {
	spec := mapValue(d.mapping(), "spec")
	if spec == nil || spec.Kind != yaml.MappingNode {
		return 0, false
	}

	replicas := mapValue(spec, "replicas")
	if replicas == nil {
		return 0, false
	}

	n, err := strconv.ParseInt(replicas.Value, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// SetReplicas overwrites spec.replicas, creating the key if it is missing.
func (d *Document) SetReplicas(count int32) error {
	spec := mapValue(d.mapping(), "spec")
	if spec == nil || spec.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: missing spec mapping", ErrMalformed)
	}

	setScalar(spec, "replicas", strconv.FormatInt(int64(count), 10), "!!int")

	return nil
}

// ContainerNames lists the containers of the pod template in document order.
func (d *Document) ContainerNames() ([]string, error) {
	containers, err := d.containers()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(containers.Content))

	for _, c := range containers.Content {
		if name := mapValue(c, "name"); name != nil {
			names = append(names, name.Value)
		}
	}

	return names, nil
}

// Resources returns the current cpu/memory values of the addressed block.
// Absent keys come back as empty strings.
func (d *Document) Resources(container string, group ResourceGroup) (cpu, memory string, err error) {
	c, err := d.container(container)
	if err != nil {
		return "", "", err
	}

	resources := mapValue(c, "resources")
	if resources == nil || resources.Kind != yaml.MappingNode {
		return "", "", nil
	}

	block := mapValue(resources, string(group))
	if block == nil || block.Kind != yaml.MappingNode {
		return "", "", nil
	}

	if v := mapValue(block, "cpu"); v != nil {
		cpu = v.Value
	}

	if v := mapValue(block, "memory"); v != nil {
		memory = v.Value
	}

	return cpu, memory, nil
}

// SetResources overwrites the cpu and memory quantities of the addressed
// requests or limits block. Other fields, key order, and sibling containers
// are not touched; missing intermediate mappings are created.
func (d *Document) SetResources(container string, group ResourceGroup, cpu, memory string) error {
	c, err := d.container(container)
	if err != nil {
		return err
	}

	resources := ensureMapping(c, "resources")
	block := ensureMapping(resources, string(group))

	setScalar(block, "cpu", cpu, "!!str")
	setScalar(block, "memory", memory, "!!str")

	return nil
}

func (d *Document) mapping() *yaml.Node {
	return d.root.Content[0]
}

func (d *Document) containers() (*yaml.Node, error) {
	node := d.mapping()

	for _, key := range []string{"spec", "template", "spec"} {
		node = mapValue(node, key)
		if node == nil || node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: missing spec.template.spec", ErrMalformed)
		}
	}

	containers := mapValue(node, "containers")
	if containers == nil || containers.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: missing containers sequence", ErrMalformed)
	}

	return containers, nil
}

func (d *Document) container(name string) (*yaml.Node, error) {
	containers, err := d.containers()
	if err != nil {
		return nil, err
	}

	for _, c := range containers.Content {
		if c.Kind != yaml.MappingNode {
			continue
		}

		if n := mapValue(c, "name"); n != nil && n.Value == name {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, name)
}

// mapValue returns the value node for key in a mapping node, or nil.
func mapValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}

	return nil
}

// ensureMapping returns the mapping under key, appending an empty one if the
// key is absent. An existing non-mapping value (a bare "resources:" key holds
// a null scalar) is converted in place so the key is never duplicated.
func ensureMapping(m *yaml.Node, key string) *yaml.Node {
	if v := mapValue(m, key); v != nil {
		if v.Kind != yaml.MappingNode {
			v.Kind = yaml.MappingNode
			v.Tag = "!!map"
			v.Value = ""
			v.Style = 0
			v.Content = nil
		}

		return v
	}

	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, k, v)

	return v
}

// setScalar overwrites the scalar under key in place, appending the key if it
// is absent.
func setScalar(m *yaml.Node, key, value, tag string) {
	if v := mapValue(m, key); v != nil {
		v.Kind = yaml.ScalarNode
		v.Tag = tag
		v.Value = value
		v.Style = 0

		return
	}

	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value},
	)
}
