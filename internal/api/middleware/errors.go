package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorHandler renders the last error recorded on the context as
// {message, stack}. The stack is omitted in production.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := classify(c.Errors.Last().Err)
		if appErr.Status >= http.StatusInternalServerError {
			log.Printf("[%s] %s %s: %v", GetRequestID(c), c.Request.Method, c.Request.URL.Path, appErr)
		}

		body := errorBody{Message: appErr.Message}
		if !production {
			body.Stack = appErr.Stack
		}
		c.JSON(appErr.Status, body)
	}
}

func classify(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var validationErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		return apperr.BadRequest("Missing or invalid fields: " + fieldNames(validationErrs))
	case errors.As(err, &syntaxErr):
		return apperr.BadRequest("Malformed JSON body")
	case errors.As(err, &typeErr):
		return apperr.BadRequest("Invalid value for field " + typeErr.Field)
	case errors.Is(err, io.EOF):
		return apperr.BadRequest("Request body is required")
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Resource not found")
	}
	return apperr.Internal("Internal server error", err)
}

func fieldNames(errs validator.ValidationErrors) string {
	names := make([]string, 0, len(errs))
	for _, fe := range errs {
		names = append(names, fe.Field())
	}
	return strings.Join(names, ", ")
}

// JSONFieldName makes validation errors report the JSON name of a field.
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// UseJSONFieldNames configures gin's binding validator with JSONFieldName.
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(JSONFieldName)
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *gin.Context) {
	abort(c, apperr.NotFound("Not Found - "+c.Request.URL.Path))
}
