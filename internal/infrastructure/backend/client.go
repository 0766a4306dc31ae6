// Package backend builds the HTTP client for the clinical backend API.
package backend

import (
	"net/http"
	"time"

	"tb-intake/config"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// NewClient returns a resty client bound to the backend base URL. Only GET requests
// are retried: creating a diagnosis or generating a report must never be repeated
// behind the operator's back.
func NewClient(cfg config.BackendConfig, log *logrus.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
			return false
		}
		return err != nil || resp.StatusCode() >= http.StatusInternalServerError
	})

	client.AddRetryHook(func(resp *resty.Response, err error) {
		log.Warnf("Retrying backend request %s %s: status=%d err=%v",
			resp.Request.Method, resp.Request.URL, resp.StatusCode(), err)
	})

	return client
}
