package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/transport/api/middlewares"
)

// getActorFromContext собирает domain.Actor из контекста gin. Значения устанавливаются
// в middlewares.AuthRequired. В случае отсутствия значений вернется нулевой Actor.
func getActorFromContext(c *gin.Context) domain.Actor {
	var actor domain.Actor

	userIDValue, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return actor
	}
	userID, ok := userIDValue.(int64)
	if !ok {
		return actor
	}
	actor.UserID = userID

	roleValue, exist := c.Get(middlewares.CurrentUserRoleKey)
	if exist {
		if role, roleOk := roleValue.(domain.RoleType); roleOk {
			actor.Role = role
		}
	}
	return actor
}

// abortWithDomainError транслирует доменные ошибки в http статусы. Неизвестные ошибки
// уходят в лог как приватные и наружу отдаются обезличенной 500-кой.
func abortWithDomainError(c *gin.Context, err error) {
	var duplicateErr *domain.DuplicatePaymentError
	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatus(http.StatusForbidden)
	case errors.Is(err, domain.ErrExpired):
		_ = c.AbortWithError(http.StatusGone, errors.New("deadline has passed")).
			SetType(gin.ErrorTypePublic)
	case errors.As(err, &duplicateErr):
		_ = c.AbortWithError(http.StatusConflict, errors.New("active payment already exists for this order")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrProofMissing):
		_ = c.AbortWithError(http.StatusConflict, errors.New("payment proof is not uploaded")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrInvalidState):
		_ = c.AbortWithError(http.StatusConflict, errors.New("action is not allowed in the current status")).
			SetType(gin.ErrorTypePublic)
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
