// Package optional は「まだ分からない値」を表すジェネリック型を提供する。
// 依存パラメータが未確定のクエリをスキップする判定に使う。
package optional

import (
	"encoding/json"
	"fmt"
)

// Value は値が存在するかどうかを伴う T の値。
type Value[T any] struct {
	val   T
	isSet bool
}

// Some は値が存在する Value を返す。
func Some[T any](v T) Value[T] {
	return Value[T]{val: v, isSet: true}
}

// None は値が存在しない Value を返す。
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr はポインタが nil なら None、そうでなければ Some を返す。
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// IsSet は値が存在するかを返す。
func (o Value[T]) IsSet() bool {
	return o.isSet
}

// Get は値と存在フラグを返す。
func (o Value[T]) Get() (T, bool) {
	return o.val, o.isSet
}

// UnwrapOr は値が存在しなければ defaultVal を返す。
func (o Value[T]) UnwrapOr(defaultVal T) T {
	if !o.isSet {
		return defaultVal
	}
	return o.val
}

// MarshalJSON は None を null として出力する。
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.isSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.val)
}

// UnmarshalJSON は null を None として読み込む。
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Value[T]) String() string {
	if !o.isSet {
		return ""
	}
	return fmt.Sprintf("%v", o.val)
}
