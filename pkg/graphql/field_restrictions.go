package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/warden"
)

const asteriskCharacter = "*"

type FieldRestrictionListKind int

const (
	AllowList FieldRestrictionListKind = iota
	BlockList
)

func (k FieldRestrictionListKind) String() string {
	switch k {
	case AllowList:
		return "AllowList"
	case BlockList:
		return "BlockList"
	default:
		return "Unknown"
	}
}

// Type lists fields of one type. The field "*" stands for all of them.
type Type struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}

// FieldRestrictionList allows or blocks fields by type.
// Restricted fields are hidden from validation and reported as undefined.
type FieldRestrictionList struct {
	Kind  FieldRestrictionListKind
	Types []Type
}

// ParseFieldRestrictions builds a FieldRestrictionList from "Type.field" entries.
func ParseFieldRestrictions(kind FieldRestrictionListKind, entries ...string) (FieldRestrictionList, error) {
	list := FieldRestrictionList{Kind: kind}
	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		typeName, fieldName, ok := strings.Cut(entry, ".")
		if !ok || typeName == "" || fieldName == "" {
			return FieldRestrictionList{}, fmt.Errorf("invalid field restriction %q, expected Type.field", entry)
		}
		i, exists := index[typeName]
		if !exists {
			i = len(list.Types)
			index[typeName] = i
			list.Types = append(list.Types, Type{Name: typeName})
		}
		list.Types[i].Fields = append(list.Types[i].Fields, fieldName)
	}
	return list, nil
}

// Filter returns a warden.Filter hiding the restricted fields.
// Types stay visible, meta fields such as __typename are not affected.
func (l FieldRestrictionList) Filter() warden.Filter {
	lookup := make(map[string]map[string]bool, len(l.Types))
	for _, restrictedType := range l.Types {
		if lookup[restrictedType.Name] == nil {
			lookup[restrictedType.Name] = make(map[string]bool, len(restrictedType.Fields))
		}
		for _, field := range restrictedType.Fields {
			lookup[restrictedType.Name][field] = true
		}
	}
	listed := func(owner *ast.Definition, field *ast.FieldDefinition) bool {
		fields := lookup[owner.Name]
		return fields[asteriskCharacter] || fields[field.Name]
	}
	kind := l.Kind
	return warden.FilterFuncs{
		Field: func(owner *ast.Definition, field *ast.FieldDefinition) bool {
			if kind == AllowList {
				return listed(owner, field)
			}
			return !listed(owner, field)
		},
	}
}
