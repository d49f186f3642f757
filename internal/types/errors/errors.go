package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var (
	ErrDBInternal    = errors.New("storage internal error")
	ErrAlreadyExists = errors.New("record already exists")

	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionIsExpired = errors.New("session is expired")
	ErrNoSession        = errors.New("session cookie is missing or invalid")

	ErrTooManyRequests = errors.New("too many requests")
	ErrBadLimit        = errors.New("limit must be a positive integer")
	ErrUnknownStorage  = errors.New("unknown storage backend")
)

type ErrorServer struct {
	Message string `json:"message"`
}

func (e *ErrorServer) Error() string {
	return e.Message
}

/*
NewErrorServer
Функция имеет возможность принимать "nil ошибку"
при получении nil наша функция понимает, что нам
просто надо отдать саксесс клиенту
*/
func NewErrorServer(err error) ErrorServer {
	if err == nil {
		return ErrorServer{
			Message: "success",
		}
	}

	return ErrorServer{
		Message: err.Error(),
	}
}

func SendErrorTo(w http.ResponseWriter, err error, statusCode int, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if errEncode := json.NewEncoder(w).Encode(NewErrorServer(err)); errEncode != nil {
		logger.Error(errEncode)
	}
}
