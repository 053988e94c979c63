// Package registry loads an in-memory credential registry (credential types,
// topics and credential sets) from YAML and links it into an entity graph.
//
// The graph stands in for the persistence layer: the CLI loads one, looks up
// the entity named on the command line and hands it to the cascade processor.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// File is the YAML layout of a registry graph.
type File struct {
	CredentialTypes []CredentialTypeSpec `yaml:"credential_types"`
	Topics          []TopicSpec          `yaml:"topics"`
	CredentialSets  []CredentialSetSpec  `yaml:"credential_sets"`
}

// CredentialTypeSpec describes one credential type.
type CredentialTypeSpec struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// TopicSpec describes one topic.
type TopicSpec struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// CredentialSetSpec describes one credential set by reference.
type CredentialSetSpec struct {
	ID             string `yaml:"id"`
	Topic          string `yaml:"topic"`
	CredentialType string `yaml:"credential_type"`
}

// Graph is a linked registry. Topics list their credential sets in the
// order they were added.
type Graph struct {
	credentialTypes map[string]*entity.CredentialType
	topics          map[string]*entity.Topic
	credentialSets  map[string]*entity.CredentialSet
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		credentialTypes: make(map[string]*entity.CredentialType),
		topics:          make(map[string]*entity.Topic),
		credentialSets:  make(map[string]*entity.CredentialSet),
	}
}

// LoadFile reads and links the graph at path.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.New(cerrors.ErrCodeInvalidGraph,
				fmt.Sprintf("graph file not found: %s", path), err).
				WithSuggestion("pass an existing file with --graph")
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	g, err := Parse(data)
	if err != nil {
		var ce *cerrors.CascadeError
		if errors.As(err, &ce) {
			return nil, ce.WithDetail("path", path)
		}
		return nil, err
	}
	return g, nil
}

// Parse decodes YAML into a linked graph. Unknown fields, duplicate or empty
// IDs and dangling references are rejected with ERR_404_INVALID_GRAPH.
func Parse(data []byte) (*Graph, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, cerrors.New(cerrors.ErrCodeInvalidGraph, "failed to parse graph", err)
	}
	return Build(f)
}

// Build links a decoded File into a Graph.
func Build(f File) (*Graph, error) {
	g := New()

	for _, spec := range f.CredentialTypes {
		if err := checkID(entity.KindCredentialType, spec.ID, g.credentialTypes); err != nil {
			return nil, err
		}
		g.credentialTypes[spec.ID] = &entity.CredentialType{ID: spec.ID, Description: spec.Description}
	}

	for _, spec := range f.Topics {
		if err := checkID(entity.KindTopic, spec.ID, g.topics); err != nil {
			return nil, err
		}
		g.topics[spec.ID] = &entity.Topic{ID: spec.ID, Type: spec.Type}
	}

	for _, spec := range f.CredentialSets {
		if _, err := g.AddCredentialSet(spec.ID, spec.Topic, spec.CredentialType); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func checkID[V any](kind entity.Kind, id string, existing map[string]V) error {
	if id == "" {
		return invalidGraph(fmt.Sprintf("%s with empty id", kind))
	}
	if _, ok := existing[id]; ok {
		return invalidGraph(fmt.Sprintf("duplicate %s id %q", kind, id))
	}
	return nil
}

func invalidGraph(msg string) error {
	return cerrors.New(cerrors.ErrCodeInvalidGraph, msg, nil)
}

// AddCredentialSet links a new credential set to an existing topic and
// credential type and appends it to the topic's collection.
func (g *Graph) AddCredentialSet(id, topicID, credentialTypeID string) (*entity.CredentialSet, error) {
	if err := checkID(entity.KindCredentialSet, id, g.credentialSets); err != nil {
		return nil, err
	}
	topic, ok := g.topics[topicID]
	if !ok {
		return nil, invalidGraph(fmt.Sprintf("credential set %q references unknown topic %q", id, topicID))
	}
	ct, ok := g.credentialTypes[credentialTypeID]
	if !ok {
		return nil, invalidGraph(fmt.Sprintf("credential set %q references unknown credential type %q", id, credentialTypeID))
	}

	cs := &entity.CredentialSet{ID: id, Topic: topic, CredentialType: ct}
	topic.CredentialSets = append(topic.CredentialSets, cs)
	g.credentialSets[id] = cs
	return cs, nil
}

// RemoveCredentialSet unlinks a credential set from the graph and from its
// topic's collection. The removed set is returned with its references intact
// so it can still be handed to a delete cascade.
func (g *Graph) RemoveCredentialSet(id string) (*entity.CredentialSet, error) {
	cs, ok := g.credentialSets[id]
	if !ok {
		return nil, unknownEntity(entity.KindCredentialSet, id)
	}
	delete(g.credentialSets, id)
	if cs.Topic != nil {
		cs.Topic.CredentialSets = slices.DeleteFunc(cs.Topic.CredentialSets,
			func(other *entity.CredentialSet) bool { return other == cs })
	}
	return cs, nil
}

// Lookup returns the entity with the given kind and ID.
func (g *Graph) Lookup(kind entity.Kind, id string) (entity.Entity, error) {
	switch kind {
	case entity.KindCredentialType:
		if ct, ok := g.credentialTypes[id]; ok {
			return ct, nil
		}
	case entity.KindTopic:
		if t, ok := g.topics[id]; ok {
			return t, nil
		}
	case entity.KindCredentialSet:
		if cs, ok := g.credentialSets[id]; ok {
			return cs, nil
		}
	default:
		return nil, cerrors.New(cerrors.ErrCodeUnknownEntity,
			fmt.Sprintf("unknown entity kind %q", kind), nil).
			WithSuggestion("use one of: credential_set, topic, credential_type")
	}
	return nil, unknownEntity(kind, id)
}

func unknownEntity(kind entity.Kind, id string) error {
	return cerrors.New(cerrors.ErrCodeUnknownEntity,
		fmt.Sprintf("%s %q not found in graph", kind, id), nil).
		WithDetail("kind", string(kind)).
		WithDetail("id", id)
}

// Entities returns every entity in the graph: credential types, then topics,
// then credential sets, each sorted by ID.
func (g *Graph) Entities() []entity.Entity {
	var out []entity.Entity
	for _, id := range sortedKeys(g.credentialTypes) {
		out = append(out, g.credentialTypes[id])
	}
	for _, id := range sortedKeys(g.topics) {
		out = append(out, g.topics[id])
	}
	for _, id := range sortedKeys(g.credentialSets) {
		out = append(out, g.credentialSets[id])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
