package handlers

import (
	"errors"
	"net/http"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/service"

	"go.uber.org/zap"
)

// handleOperationError переводит ошибку менеджера в HTTP-ответ.
func handleOperationError(w http.ResponseWriter, err error) bool {
	var opErr *service.OperationError
	if !errors.As(err, &opErr) {
		return false
	}

	statusCode := mapOperationErrorToHTTP(opErr.Kind)

	logger.Warn("HTTP: Ошибка операции",
		zap.String("kind", opErr.Kind),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", opErr.Kind),
		toPayload("message", opErr.Message),
		toPayload("details", opErr.Details),
	)
	return true
}

func mapOperationErrorToHTTP(kind string) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindFetch, service.KindCreate, service.KindUpdate,
		service.KindDelete, service.KindUpload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
