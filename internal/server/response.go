package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/router"
)

type errorResponse struct {
	Error string `json:"error"`
}

// badRequestError marks malformed input that never reached the domain.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func writeJSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func (s *Server) bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return &badRequestError{msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	return s.validate.Struct(v)
}

func seqParam(c *fiber.Ctx, name string) (int, error) {
	seq, err := strconv.Atoi(c.Params(name))
	if err != nil || seq < 0 {
		return 0, &badRequestError{msg: fmt.Sprintf("%s must be a non-negative integer", name)}
	}
	return seq, nil
}

func statusFor(err error) int {
	var (
		badRequest *badRequestError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &validation), errors.Is(err, router.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidVersion):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = http.StatusText(status)
	}
	return writeJSON(c, status, errorResponse{Error: msg})
}

func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeJSON(c, fe.Code, errorResponse{Error: fe.Message})
	}
	return s.writeError(c, err)
}
