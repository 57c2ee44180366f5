// Package domain holds the types shared by every layer of the values API.
package domain

import (
	"fmt"
)

// Operation identifies one of the values operations.
// It is encoded as its string name in JSON, never as a number.
type Operation int

const (
	OperationUnknown Operation = iota
	OperationList
	OperationGet
	OperationCreate
	OperationUpdate
	OperationDelete
)

var operationNames = map[Operation]string{
	OperationUnknown: "unknown",
	OperationList:    "list",
	OperationGet:     "get",
	OperationCreate:  "create",
	OperationUpdate:  "update",
	OperationDelete:  "delete",
}

// Operations lists every known operation in declaration order
func Operations() []Operation {
	return []Operation{OperationList, OperationGet, OperationCreate, OperationUpdate, OperationDelete}
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler
func (o Operation) MarshalText() ([]byte, error) {
	if _, ok := operationNames[o]; !ok {
		return nil, fmt.Errorf("unknown operation: %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOperation returns the operation with the given name
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return OperationUnknown, fmt.Errorf("unknown operation: %q", name)
}
