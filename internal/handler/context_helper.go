package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/middleware"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

func tokenFromContext(c *gin.Context) string {
	return middleware.TokenFromContext(c)
}

func int64Param(c *gin.Context, name string) (int64, error) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a numeric id")
	}
	return value, nil
}
