// Package jsonorder reads and writes JSON objects without losing the order of their members.
package jsonorder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	objectExpectedMessageConstant   = "expected a JSON object"
	trailingDataMessageConstant     = "unexpected data after JSON object"
	memberKeyDecodeTemplateConstant = "invalid object key: %w"
	memberValueTemplateConstant     = "invalid value for %q: %w"
	indentationUnitConstant         = "  "
	objectOpenConstant              = "{\n"
	objectCloseConstant             = "}\n"
	emptyObjectConstant             = "{}\n"
	memberSeparatorConstant         = ",\n"
	memberKeyValueSeparatorConstant = ": "
	lineBreakConstant               = "\n"
)

// ErrNotObject indicates that the document is not a single JSON object.
var ErrNotObject = errors.New(objectExpectedMessageConstant)

// Member is one key/value pair of an object; Value holds the raw JSON text.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Object is a JSON object represented as an ordered member list.
type Object []Member

// Decode parses content as a single JSON object, keeping members in document order.
// Repeated keys are kept as separate members.
func Decode(content []byte) (Object, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	object, decodeError := decodeObject(decoder)
	if decodeError != nil {
		return nil, decodeError
	}
	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		return nil, errors.New(trailingDataMessageConstant)
	}
	return object, nil
}

// DecodeRaw parses a raw member value as an ordered object.
func DecodeRaw(value json.RawMessage) (Object, error) {
	return Decode(value)
}

func decodeObject(decoder *json.Decoder) (Object, error) {
	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != '{' {
		return nil, ErrNotObject
	}

	object := Object{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, fmt.Errorf(memberKeyDecodeTemplateConstant, keyError)
		}
		memberKey, isString := keyToken.(string)
		if !isString {
			return nil, fmt.Errorf(memberKeyDecodeTemplateConstant, ErrNotObject)
		}

		var memberValue json.RawMessage
		if valueError := decoder.Decode(&memberValue); valueError != nil {
			return nil, fmt.Errorf(memberValueTemplateConstant, memberKey, valueError)
		}
		object = append(object, Member{Key: memberKey, Value: memberValue})
	}

	if _, closingError := decoder.Token(); closingError != nil {
		return nil, closingError
	}
	return object, nil
}

// Lookup returns the value of the first member named key.
func (object Object) Lookup(key string) (json.RawMessage, bool) {
	for _, member := range object {
		if member.Key == key {
			return member.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first member named key, or appends a new member.
func (object Object) Set(key string, value json.RawMessage) Object {
	for memberIndex := range object {
		if object[memberIndex].Key == key {
			object[memberIndex].Value = value
			return object
		}
	}
	return append(object, Member{Key: key, Value: value})
}

// Encode renders the object with two-space indentation and a trailing newline.
func (object Object) Encode() ([]byte, error) {
	if len(object) == 0 {
		return []byte(emptyObjectConstant), nil
	}

	var buffer bytes.Buffer
	buffer.WriteString(objectOpenConstant)
	for memberIndex, member := range object {
		encodedKey, keyError := json.Marshal(member.Key)
		if keyError != nil {
			return nil, keyError
		}
		buffer.WriteString(indentationUnitConstant)
		buffer.Write(encodedKey)
		buffer.WriteString(memberKeyValueSeparatorConstant)
		if indentError := json.Indent(&buffer, member.Value, indentationUnitConstant, indentationUnitConstant); indentError != nil {
			return nil, fmt.Errorf(memberValueTemplateConstant, member.Key, indentError)
		}
		if memberIndex < len(object)-1 {
			buffer.WriteString(memberSeparatorConstant)
		} else {
			buffer.WriteString(lineBreakConstant)
		}
	}
	buffer.WriteString(objectCloseConstant)
	return buffer.Bytes(), nil
}
