package vectorstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Svring/galatea-sub000/pkg/types"
)

// entityPayload converts an entity to a Qdrant payload by round-tripping
// through its JSON form. The embedding is dropped: the vector lives next to
// the payload, not inside it.
func entityPayload(entity types.Entity) (map[string]*qdrant.Value, error) {
	entity.Embedding = nil

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	// UseNumber keeps line numbers as integers instead of doubles
	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode entity fields: %w", err)
	}

	payload := make(map[string]*qdrant.Value, len(fields))
	for key, val := range fields {
		payload[key] = jsonToValue(val)
	}

	return payload, nil
}

// payloadEntity rebuilds an entity from a search hit's payload. The result
// never carries an embedding.
func payloadEntity(payload map[string]*qdrant.Value) (types.Entity, error) {
	fields := make(map[string]interface{}, len(payload))
	for key, val := range payload {
		fields[key] = valueToJSON(val)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return types.Entity{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var entity types.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return types.Entity{}, fmt.Errorf("failed to decode payload into entity: %w", err)
	}
	entity.Embedding = nil

	return entity, nil
}

// jsonToValue maps a decoded JSON value onto the Qdrant payload value type.
func jsonToValue(v interface{}) *qdrant.Value {
	switch val := v.(type) {
	case nil:
		return &qdrant.Value{Kind: &qdrant.Value_NullValue{NullValue: qdrant.NullValue_NULL_VALUE}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: i}}
		}
		f, _ := val.Float64()
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: f}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
	case []interface{}:
		values := make([]*qdrant.Value, len(val))
		for i, item := range val {
			values[i] = jsonToValue(item)
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
	case map[string]interface{}:
		fields := make(map[string]*qdrant.Value, len(val))
		for key, item := range val {
			fields[key] = jsonToValue(item)
		}
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{Fields: fields}}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprint(val)}}
	}
}

// valueToJSON is the inverse of jsonToValue. It also handles integer
// values written by other clients.
func valueToJSON(v *qdrant.Value) interface{} {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		items := make([]interface{}, 0, len(values))
		for _, item := range values {
			items = append(items, valueToJSON(item))
		}
		return items
	case *qdrant.Value_StructValue:
		structFields := kind.StructValue.GetFields()
		fields := make(map[string]interface{}, len(structFields))
		for key, item := range structFields {
			fields[key] = valueToJSON(item)
		}
		return fields
	default:
		return nil
	}
}
