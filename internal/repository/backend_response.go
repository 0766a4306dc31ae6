package repository

import (
	"encoding/json"
	"fmt"

	domainRepo "tb-intake/internal/domain/repository"

	"github.com/go-resty/resty/v2"
)

// envelope is the clinical backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Message string `json:"message"`
}

// decode checks the outcome of a backend call and unwraps the envelope into out.
// out may be nil when only the message matters.
func decode(operation string, resp *resty.Response, err error, out interface{}) (*envelope, error) {
	if err != nil {
		return nil, &domainRepo.APIError{Operation: operation, Err: err}
	}

	var env envelope
	body := resp.Body()
	if len(body) > 0 {
		if jsonErr := json.Unmarshal(body, &env); jsonErr != nil && resp.IsSuccess() {
			return nil, &domainRepo.APIError{Operation: operation, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode response: %w", jsonErr)}
		}
	}

	if resp.IsError() {
		apiErr := &domainRepo.APIError{Operation: operation, StatusCode: resp.StatusCode()}
		if env.Error != nil {
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &domainRepo.APIError{Operation: operation, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode data: %w", err)}
		}
	}

	return &env, nil
}
