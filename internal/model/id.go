package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID はバックエンドが払い出すエンティティの数値IDを表す。
// バックエンドはIDを数値で返すことも文字列で返すこともあるため、
// JSONではどちらの表現も受け付け、出力は常に数値とする。
type ID int64

// String はIDを10進文字列に変換する。URLパスやキャッシュキーで使用する。
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID は10進文字列をIDに変換する。
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

// UnmarshalJSON は数値および数値文字列の両方を受け付ける。
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n)
	return nil
}
