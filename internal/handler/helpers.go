package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tillpoint/internal/apierror"
	"tillpoint/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// pathID parses the :id path parameter. Writes a 400 and returns false when
// it is not a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps typed service errors onto HTTP status codes:
// validation 422, not found 404, duplicate and stock conflicts 409.
// Anything else is a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	var (
		ve  *service.ValidationError
		nfe *service.NotFoundError
		ise *service.InsufficientStockError
		de  *service.DuplicateError
	)
	switch {
	case errors.As(err, &ve):
		if len(ve.Fields) > 0 {
			c.JSON(http.StatusUnprocessableEntity, &apierror.ValidationError{Code: apierror.CodeValidation, Detail: ve.Detail, Fields: ve.Fields})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodeValidation, ve.Detail))
	case errors.As(err, &nfe):
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, nfe.Error()))
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeInsufficientStock, ise.Error()))
	case errors.As(err, &de):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeDuplicate, de.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeInternal, "internal server error"))
	}
}
