package common

import (
	"bytes"
	"encoding/json"
	"os"
)

// Encode writes data as a single line of JSON without the trailing newline
// json.Encoder appends.
func Encode(data interface{}) ([]byte, error) {
	buff := new(bytes.Buffer)
	encoder := json.NewEncoder(buff)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(data)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buff.Bytes(), "\n"), nil
}

func Decode[T interface{}](bs []byte) (*T, error) {
	buff := new(bytes.Buffer)
	var data T
	buff.Write(bs)
	decoder := json.NewDecoder(buff)
	err := decoder.Decode(&data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func ExistFile(name string) bool {
	_, err := os.Stat(name)
	return !os.IsNotExist(err)
}
