package handler

import "tb-intake/internal/domain/repository"

func backendMessageOr(err error, fallback string) string {
	if msg := repository.BackendMessage(err); msg != "" {
		return msg
	}
	return fallback
}
