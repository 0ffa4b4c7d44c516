package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is either a Success[T] or a Failure.
type Envelope interface {
	envelope()
}

type Success[T any] struct {
	Data T
}

type Failure struct {
	Error ApiError
}

func (Success[T]) envelope() {}
func (Failure) envelope()    {}

type rawEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    *int    `json:"code"`
		Message *string `json:"message"`
	} `json:"error"`
}

// DecodeEnvelope decodes `body` once into one of the two envelope variants.
// A body with an "error" object is a Failure even if it also has "data".
func DecodeEnvelope[T any](body []byte) (Envelope, error) {
	var raw rawEnvelope
	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotDecodeResponse, err)
	}

	if raw.Error != nil && raw.Error.Code != nil && raw.Error.Message != nil {
		return Failure{Error: ApiError{
			Code:    *raw.Error.Code,
			Message: *raw.Error.Message,
		}}, nil
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: neither data nor error present", ErrCannotDecodeResponse)
	}

	var data T
	if !bytes.Equal(raw.Data, []byte("null")) {
		err = json.Unmarshal(raw.Data, &data)
		if err != nil {
			return nil, fmt.Errorf("%w: data: %w", ErrCannotDecodeResponse, err)
		}
	}
	return Success[T]{Data: data}, nil
}
