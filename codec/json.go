// File: json.go
// Role: JSONCodec — a reference Visitor-driven serializer/deserializer used
// solely to exercise the round-trip testable property from spec.md §8. Not
// a GraphSON implementation; stdlib encoding/json is justified in DESIGN.md
// as this is explicitly out of core scope (spec.md §1).
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/katalvlaran/proptergraph/core"
	"github.com/katalvlaran/proptergraph/value"
)

type jsonValue struct {
	Kind  string               `json:"kind"`
	Bool  *bool                `json:"bool,omitempty"`
	Int   *int64               `json:"int,omitempty"`
	Float *float64             `json:"float,omitempty"`
	Str   *string              `json:"str,omitempty"`
	Bytes []byte               `json:"bytes,omitempty"`
	List  []jsonValue          `json:"list,omitempty"`
	Set   []jsonValue          `json:"set,omitempty"`
	Map   map[string]jsonValue `json:"map,omitempty"`
	Dir   *string              `json:"dir,omitempty"`
	Card  *string              `json:"card,omitempty"`
}

func encodeValue(v value.Value) jsonValue {
	switch v.Kind() {
	case value.KindNull:
		return jsonValue{Kind: "null"}
	case value.KindBool:
		b, _ := v.AsBool()
		return jsonValue{Kind: "bool", Bool: &b}
	case value.KindInt32:
		i, _ := v.AsInt64()
		return jsonValue{Kind: "int32", Int: &i}
	case value.KindInt64:
		i, _ := v.AsInt64()
		return jsonValue{Kind: "int64", Int: &i}
	case value.KindFloat32:
		f, _ := v.AsFloat64()
		return jsonValue{Kind: "float32", Float: &f}
	case value.KindFloat64:
		f, _ := v.AsFloat64()
		return jsonValue{Kind: "float64", Float: &f}
	case value.KindString:
		s, _ := v.AsString()
		return jsonValue{Kind: "string", Str: &s}
	case value.KindBytes:
		b, _ := v.AsBytes()
		return jsonValue{Kind: "bytes", Bytes: b}
	case value.KindList:
		items, _ := v.AsList()
		out := make([]jsonValue, len(items))
		for i, it := range items {
			out[i] = encodeValue(it)
		}
		return jsonValue{Kind: "list", List: out}
	case value.KindSet:
		items, _ := v.AsSet()
		out := make([]jsonValue, len(items))
		for i, it := range items {
			out[i] = encodeValue(it)
		}
		return jsonValue{Kind: "set", Set: out}
	case value.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]jsonValue, len(m))
		for k, mv := range m {
			out[k] = encodeValue(mv)
		}
		return jsonValue{Kind: "map", Map: out}
	case value.KindDirection:
		d, _ := v.AsDirection()
		s := d.String()
		return jsonValue{Kind: "direction", Dir: &s}
	case value.KindCardinality:
		c, _ := v.AsCardinality()
		s := c.String()
		return jsonValue{Kind: "cardinality", Card: &s}
	default:
		return jsonValue{Kind: "null"}
	}
}

func decodeValue(jv jsonValue) (value.Value, error) {
	switch jv.Kind {
	case "null", "":
		return value.Null, nil
	case "bool":
		if jv.Bool == nil {
			return value.Null, fmt.Errorf("codec: bool value missing payload")
		}
		return value.OfBool(*jv.Bool), nil
	case "int32":
		if jv.Int == nil {
			return value.Null, fmt.Errorf("codec: int32 value missing payload")
		}
		return value.OfInt32(int32(*jv.Int)), nil
	case "int64":
		if jv.Int == nil {
			return value.Null, fmt.Errorf("codec: int64 value missing payload")
		}
		return value.OfInt64(*jv.Int), nil
	case "float32":
		if jv.Float == nil {
			return value.Null, fmt.Errorf("codec: float32 value missing payload")
		}
		return value.OfFloat32(float32(*jv.Float)), nil
	case "float64":
		if jv.Float == nil {
			return value.Null, fmt.Errorf("codec: float64 value missing payload")
		}
		return value.OfFloat64(*jv.Float), nil
	case "string":
		if jv.Str == nil {
			return value.Null, fmt.Errorf("codec: string value missing payload")
		}
		return value.OfString(*jv.Str), nil
	case "bytes":
		return value.OfBytes(jv.Bytes), nil
	case "list":
		items := make([]value.Value, len(jv.List))
		for i, it := range jv.List {
			dv, err := decodeValue(it)
			if err != nil {
				return value.Null, err
			}
			items[i] = dv
		}
		return value.OfList(items...), nil
	case "set":
		items := make([]value.Value, len(jv.Set))
		for i, it := range jv.Set {
			dv, err := decodeValue(it)
			if err != nil {
				return value.Null, err
			}
			items[i] = dv
		}
		return value.OfSet(items...), nil
	case "map":
		out := make(map[string]value.Value, len(jv.Map))
		for k, mv := range jv.Map {
			dv, err := decodeValue(mv)
			if err != nil {
				return value.Null, err
			}
			out[k] = dv
		}
		return value.OfMap(out), nil
	case "direction":
		if jv.Dir == nil {
			return value.Null, fmt.Errorf("codec: direction value missing payload")
		}
		d, err := parseDirection(*jv.Dir)
		if err != nil {
			return value.Null, err
		}
		return value.OfDirection(d), nil
	case "cardinality":
		if jv.Card == nil {
			return value.Null, fmt.Errorf("codec: cardinality value missing payload")
		}
		c, err := parseCardinality(*jv.Card)
		if err != nil {
			return value.Null, err
		}
		return value.OfCardinality(c), nil
	default:
		return value.Null, fmt.Errorf("codec: unknown value kind %q", jv.Kind)
	}
}

func parseDirection(s string) (value.Direction, error) {
	switch s {
	case "OUT":
		return value.DirOut, nil
	case "IN":
		return value.DirIn, nil
	case "BOTH":
		return value.DirBoth, nil
	default:
		return 0, fmt.Errorf("codec: unknown direction %q", s)
	}
}

func parseCardinality(s string) (value.Cardinality, error) {
	switch s {
	case "SINGLE":
		return value.Single, nil
	case "LIST":
		return value.List, nil
	case "SET":
		return value.Set, nil
	default:
		return 0, fmt.Errorf("codec: unknown cardinality %q", s)
	}
}

type jsonProperty struct {
	Value jsonValue            `json:"value"`
	Meta  map[string]jsonValue `json:"meta,omitempty"`
}

type jsonVertex struct {
	ID         uint64                    `json:"id"`
	Label      string                    `json:"label"`
	Properties map[string][]jsonProperty `json:"properties"`
}

type jsonEdge struct {
	ID         uint64               `json:"id"`
	Label      string               `json:"label"`
	OutID      uint64               `json:"out_id"`
	InID       uint64               `json:"in_id"`
	Properties map[string]jsonValue `json:"properties"`
}

type jsonGraph struct {
	Version   string               `json:"version"`
	Timestamp int64                `json:"timestamp"`
	Vertices  []jsonVertex         `json:"vertices"`
	Edges     []jsonEdge           `json:"edges"`
	Variables map[string]jsonValue `json:"variables"`
}

// jsonVisitor accumulates WriteGraph's visit calls into a jsonGraph.
type jsonVisitor struct {
	out jsonGraph
}

func (jv *jsonVisitor) VisitHeader(h Header) error {
	jv.out.Version = h.Version
	jv.out.Timestamp = h.Timestamp
	return nil
}

func (jv *jsonVisitor) VisitVertex(id uint64, label string, properties map[string][]Property) error {
	props := make(map[string][]jsonProperty, len(properties))
	for key, list := range properties {
		encoded := make([]jsonProperty, len(list))
		for i, p := range list {
			meta := make(map[string]jsonValue, len(p.Meta))
			for mk, mv := range p.Meta {
				meta[mk] = encodeValue(mv)
			}
			encoded[i] = jsonProperty{Value: encodeValue(p.Value), Meta: meta}
		}
		props[key] = encoded
	}
	jv.out.Vertices = append(jv.out.Vertices, jsonVertex{ID: id, Label: label, Properties: props})
	return nil
}

func (jv *jsonVisitor) VisitEdge(id uint64, label string, outID, inID uint64, properties map[string]value.Value) error {
	props := make(map[string]jsonValue, len(properties))
	for k, v := range properties {
		props[k] = encodeValue(v)
	}
	jv.out.Edges = append(jv.out.Edges, jsonEdge{ID: id, Label: label, OutID: outID, InID: inID, Properties: props})
	return nil
}

func (jv *jsonVisitor) VisitVariables(variables map[string]value.Value) error {
	jv.out.Variables = make(map[string]jsonValue, len(variables))
	for k, v := range variables {
		jv.out.Variables[k] = encodeValue(v)
	}
	return nil
}

// JSONCodec is a reference Visitor-driven serializer: Encode walks a Graph
// via WriteGraph into the wire schema above; Decode rebuilds a Graph from
// it under the given IDPolicy.
type JSONCodec struct{}

// Encode serializes g's entire current state.
func (JSONCodec) Encode(g *core.Graph, header Header) ([]byte, error) {
	jv := &jsonVisitor{}
	if err := WriteGraph(g, jv, header); err != nil {
		return nil, err
	}
	return json.Marshal(jv.out)
}

// Decode replays a previously-Encoded blob into g, honoring policy for id
// conflicts (spec §6).
func (JSONCodec) Decode(data []byte, g *core.Graph, policy IDPolicy) error {
	var wire jsonGraph
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	remap := make(map[uint64]uint64, len(wire.Vertices))
	for _, jvx := range wire.Vertices {
		if err := decodeVertex(g, jvx, policy, remap); err != nil {
			return err
		}
	}
	for _, je := range wire.Edges {
		if err := decodeEdge(g, je, policy, remap); err != nil {
			return err
		}
	}
	for k, jval := range wire.Variables {
		v, err := decodeValue(jval)
		if err != nil {
			return err
		}
		if err := g.SetVariable(k, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeVertex(g *core.Graph, jvx jsonVertex, policy IDPolicy, remap map[uint64]uint64) error {
	props, err := decodeProps(jvx)
	if err != nil {
		return err
	}

	if policy == GenerateNew {
		return createVertexNewID(g, jvx, props, remap)
	}

	_, verr := g.Vertex(jvx.ID)
	conflict := verr == nil

	switch policy {
	case Strict:
		if conflict {
			return core.ErrIDAlreadyExists
		}
		return createVertex(g, jvx, props, remap)

	case MergeProperties:
		if !conflict {
			return createVertex(g, jvx, props, remap)
		}
		v, _ := g.Vertex(jvx.ID)
		remap[jvx.ID] = jvx.ID
		for key, list := range props {
			card, _ := v.Cardinality(key)
			for _, p := range list {
				if _, err := v.AddProperty(key, p.Value, &card, p.Meta); err != nil {
					return err
				}
			}
		}
		return nil

	case ReplaceElement:
		if conflict {
			if err := g.RemoveVertex(jvx.ID); err != nil {
				return err
			}
		}
		return createVertex(g, jvx, props, remap)

	default:
		return fmt.Errorf("codec: unknown id policy %d", policy)
	}
}

func createVertex(g *core.Graph, jvx jsonVertex, props map[string][]Property, remap map[uint64]uint64) error {
	base := map[string]value.Value{"id": value.OfInt64(int64(jvx.ID))}
	if jvx.Label != "" {
		base["label"] = value.OfString(jvx.Label)
	}
	v, err := g.AddVertex(base)
	if err != nil {
		return err
	}
	remap[jvx.ID] = jvx.ID
	return attachVertexProperties(v, props)
}

func createVertexNewID(g *core.Graph, jvx jsonVertex, props map[string][]Property, remap map[uint64]uint64) error {
	base := map[string]value.Value{}
	if jvx.Label != "" {
		base["label"] = value.OfString(jvx.Label)
	}
	v, err := g.AddVertex(base)
	if err != nil {
		return err
	}
	remap[jvx.ID] = v.ID()
	return attachVertexProperties(v, props)
}

func attachVertexProperties(v *core.Vertex, props map[string][]Property) error {
	for key, list := range props {
		// The wire format carries no cardinality; several values under one
		// key are re-added as LIST so that none of them replaces another.
		var card *value.Cardinality
		if len(list) > 1 {
			c := value.List
			card = &c
		}
		for _, p := range list {
			if _, err := v.AddProperty(key, p.Value, card, p.Meta); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeProps(jvx jsonVertex) (map[string][]Property, error) {
	out := make(map[string][]Property, len(jvx.Properties))
	for key, list := range jvx.Properties {
		decoded := make([]Property, len(list))
		for i, jp := range list {
			val, err := decodeValue(jp.Value)
			if err != nil {
				return nil, err
			}
			meta := make(map[string]value.Value, len(jp.Meta))
			for mk, mv := range jp.Meta {
				dv, err := decodeValue(mv)
				if err != nil {
					return nil, err
				}
				meta[mk] = dv
			}
			decoded[i] = Property{Value: val, Meta: meta}
		}
		out[key] = decoded
	}
	return out, nil
}

func decodeEdge(g *core.Graph, je jsonEdge, policy IDPolicy, remap map[uint64]uint64) error {
	outID, okOut := remap[je.OutID]
	inID, okIn := remap[je.InID]
	if !okOut || !okIn {
		return fmt.Errorf("codec: edge %d references an unresolved endpoint", je.ID)
	}
	props := make(map[string]value.Value, len(je.Properties))
	for k, jval := range je.Properties {
		v, err := decodeValue(jval)
		if err != nil {
			return err
		}
		props[k] = v
	}
	weight := 1.0
	if w, ok := props["weight"]; ok {
		if f, ok := w.Float(); ok {
			weight = f
		}
	}

	if policy == GenerateNew {
		_, err := g.AddEdge(outID, inID, je.Label, weight, props)
		return err
	}

	_, everr := g.Edge(je.ID)
	conflict := everr == nil

	switch policy {
	case Strict:
		if conflict {
			return core.ErrIDAlreadyExists
		}
		props["id"] = value.OfInt64(int64(je.ID))
		_, err := g.AddEdge(outID, inID, je.Label, weight, props)
		return err

	case MergeProperties:
		if !conflict {
			props["id"] = value.OfInt64(int64(je.ID))
			_, err := g.AddEdge(outID, inID, je.Label, weight, props)
			return err
		}
		e, _ := g.Edge(je.ID)
		for k, v := range props {
			if err := e.SetProperty(k, v); err != nil {
				return err
			}
		}
		return nil

	case ReplaceElement:
		if conflict {
			if err := g.RemoveEdge(je.ID); err != nil {
				return err
			}
		}
		props["id"] = value.OfInt64(int64(je.ID))
		_, err := g.AddEdge(outID, inID, je.Label, weight, props)
		return err

	default:
		return fmt.Errorf("codec: unknown id policy %d", policy)
	}
}
