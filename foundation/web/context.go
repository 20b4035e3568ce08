package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context decorates the gin context with a plain context.Context (claims are
// stored there, not in gin's keymap) and with collected param/query errors so
// handlers can parse everything first and validate once.
type Context struct {
	*gin.Context
	Ctx context.Context

	paramErrs []error
	queryErrs []error
}

// Respond writes data as JSON with the given status code.
func (c *Context) Respond(data interface{}, status int) error {
	c.JSON(status, data)
	return nil
}

// RespondError maps the error to a status and writes the standard error body.
func (c *Context) RespondError(err error) error {
	status := http.StatusInternalServerError

	var webErr *Error
	if errors.As(err, &webErr) {
		status = webErr.Status
	}

	c.JSON(status, map[string]interface{}{
		"error":  err.Error(),
		"status": false,
	})
	return nil
}

// BindFunc binds the request body (json or form) into v and checks that the
// named struct fields were actually provided.
func (c *Context) BindFunc(v interface{}, requiredFields ...string) error {
	if err := c.ShouldBind(v); err != nil {
		return NewRequestError(errors.Wrap(err, "parsing request body"), http.StatusBadRequest)
	}

	if missing := missingFields(v, requiredFields); len(missing) > 0 {
		return NewRequestError(
			errors.New(fmt.Sprintf("required fields are missing: %s", strings.Join(missing, ", "))),
			http.StatusBadRequest,
		)
	}

	return nil
}

func missingFields(v interface{}, requiredFields []string) []string {
	var missing []string

	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	for _, name := range requiredFields {
		field := value.FieldByName(name)
		if !field.IsValid() || field.IsZero() {
			missing = append(missing, name)
		}
	}

	return missing
}

// GetParam parses a path parameter to the requested kind. Parse failures are
// collected and surfaced by ValidParam.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.paramErrs = append(c.paramErrs, errors.Errorf("param %q must be an integer", name))
			return 0
		}
		return v
	case reflect.String:
		return raw
	default:
		c.paramErrs = append(c.paramErrs, errors.Errorf("unsupported param kind for %q", name))
		return nil
	}
}

func (c *Context) ValidParam() error {
	if len(c.paramErrs) == 0 {
		return nil
	}
	return NewRequestError(joinErrs(c.paramErrs), http.StatusBadRequest)
}

// GetQueryFunc parses an optional query parameter, returning a typed pointer
// which is nil when the parameter is absent.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)

	switch kind {
	case reflect.Int:
		if !ok {
			return (*int)(nil)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, errors.Errorf("query %q must be an integer", name))
			return (*int)(nil)
		}
		return &v
	case reflect.String:
		if !ok {
			return (*string)(nil)
		}
		return &raw
	case reflect.Bool:
		if !ok {
			return (*bool)(nil)
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, errors.Errorf("query %q must be a boolean", name))
			return (*bool)(nil)
		}
		return &v
	default:
		c.queryErrs = append(c.queryErrs, errors.Errorf("unsupported query kind for %q", name))
		return nil
	}
}

func (c *Context) ValidQuery() error {
	if len(c.queryErrs) == 0 {
		return nil
	}
	return NewRequestError(joinErrs(c.queryErrs), http.StatusBadRequest)
}

func joinErrs(errs []error) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}
