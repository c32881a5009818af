package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/pkg/validation"
)

// RegisterValidators adds the custom binding rules to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return validation.Register(v)
}

// BindJSON binds the request body into obj and writes a 400 listing every
// failed rule when it does not validate
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(400, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
