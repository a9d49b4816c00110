package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var indentedJSON = jsoniter.Config{IndentionStep: 2}.Froze()

type catalogKind int

const (
	kindScalar catalogKind = iota
	kindNumber
	kindObject
	kindArray
)

// catalogValue is a decoded catalog document that remembers key order.
// A repeated key keeps its first position and its last value.
type catalogValue struct {
	kind   catalogKind
	scalar any
	number string
	keys   []string
	fields map[string]*catalogValue
	items  []*catalogValue
}

func newCatalogObject() *catalogValue {
	return &catalogValue{kind: kindObject, fields: make(map[string]*catalogValue)}
}

func (v *catalogValue) set(key string, value *catalogValue) {
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = value
}

// LoadCatalog reads a product catalog written as JSON (or YAML) and renders
// it as indented JSON, keeping the key order of the file.
func LoadCatalog(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read catalog: %w", err)
	}
	return RenderCatalog(content)
}

// RenderCatalog converts catalog content to indented JSON. Valid JSON is
// decoded as JSON; anything else is parsed as YAML.
func RenderCatalog(content []byte) (string, error) {
	var (
		doc *catalogValue
		err error
	)
	if jsoniter.ConfigCompatibleWithStandardLibrary.Valid(content) {
		doc, err = decodeJSONCatalog(content)
	} else {
		doc, err = decodeYAMLCatalog(content)
	}
	if err != nil {
		return "", err
	}

	stream := indentedJSON.BorrowStream(nil)
	defer indentedJSON.ReturnStream(stream)
	writeCatalogValue(stream, doc)
	if stream.Error != nil {
		return "", fmt.Errorf("encode catalog: %w", stream.Error)
	}
	return string(append([]byte(nil), stream.Buffer()...)), nil
}

func decodeJSONCatalog(content []byte) (*catalogValue, error) {
	iter := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowIterator(content)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnIterator(iter)

	doc := readJSONValue(iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, fmt.Errorf("parse catalog: %w", iter.Error)
	}
	if doc == nil {
		return nil, errors.New("catalog is empty")
	}
	return doc, nil
}

func readJSONValue(iter *jsoniter.Iterator) *catalogValue {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		obj := newCatalogObject()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			value := readJSONValue(it)
			if value == nil {
				return false
			}
			obj.set(key, value)
			return true
		})
		return obj
	case jsoniter.ArrayValue:
		arr := &catalogValue{kind: kindArray}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			value := readJSONValue(it)
			if value == nil {
				return false
			}
			arr.items = append(arr.items, value)
			return true
		})
		return arr
	case jsoniter.StringValue:
		return &catalogValue{kind: kindScalar, scalar: iter.ReadString()}
	case jsoniter.NumberValue:
		return &catalogValue{kind: kindNumber, number: string(iter.ReadNumber())}
	case jsoniter.BoolValue:
		return &catalogValue{kind: kindScalar, scalar: iter.ReadBool()}
	case jsoniter.NilValue:
		iter.ReadNil()
		return &catalogValue{kind: kindScalar}
	default:
		iter.ReportError("parse catalog", "unexpected value")
		return nil
	}
}

func decodeYAMLCatalog(content []byte) (*catalogValue, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(n *yaml.Node) (*catalogValue, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &catalogValue{kind: kindScalar}, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		obj := newCatalogObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.set(n.Content[i].Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &catalogValue{kind: kindArray}
		for _, item := range n.Content {
			value, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, value)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", n.Line, err)
		}
		return &catalogValue{kind: kindScalar, scalar: v}, nil
	default:
		return nil, fmt.Errorf("catalog line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func writeCatalogValue(stream *jsoniter.Stream, v *catalogValue) {
	switch v.kind {
	case kindObject:
		if len(v.keys) == 0 {
			stream.WriteEmptyObject()
			return
		}
		stream.WriteObjectStart()
		for i, key := range v.keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(key)
			writeCatalogValue(stream, v.fields[key])
		}
		stream.WriteObjectEnd()
	case kindArray:
		if len(v.items) == 0 {
			stream.WriteEmptyArray()
			return
		}
		stream.WriteArrayStart()
		for i, item := range v.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeCatalogValue(stream, item)
		}
		stream.WriteArrayEnd()
	case kindNumber:
		stream.WriteRaw(v.number)
	default:
		stream.WriteVal(v.scalar)
	}
}
