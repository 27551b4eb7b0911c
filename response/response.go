// Package response implements the request/response envelope (spec
// section 7): a Code/CodeInstance pattern carrying an HTTP status and
// message per error code, and a uniform JSON envelope, adapted from the
// teacher's response package to the sqlerr taxonomy.
package response

import (
	"net/http"

	"github.com/forbearing/flowquery/sqlerr"
	"github.com/gin-gonic/gin"
)

// Code is a stable, wire-level response code. Negative and zero values
// are reserved for the generic success/failure pair; positive values
// enumerate the taxonomy.
type Code int32

const (
	CodeSuccess Code = 0
	CodeFailure Code = -1
)

const (
	CodeInvalidParameterSelection Code = 1000 + iota
	CodeInvalidInput
	CodeUnauthorized
	CodeForbidden
	CodeConfigurationError
	CodeDatasetResultTooLarge
	CodeExecutionError
	CodeNotFound
)

type codeValue struct {
	Status int
	Msg    string
}

var codeValueMap = map[Code]codeValue{
	CodeSuccess: {http.StatusOK, "success"},
	CodeFailure: {http.StatusBadRequest, "failure"},

	CodeInvalidParameterSelection: {http.StatusBadRequest, "invalid parameter selection"},
	CodeInvalidInput:              {http.StatusBadRequest, "invalid request input"},
	CodeUnauthorized:              {http.StatusUnauthorized, "missing or invalid authentication token"},
	CodeForbidden:                 {http.StatusForbidden, "insufficient access level for the requested scope"},
	CodeConfigurationError:        {http.StatusInternalServerError, "project configuration error"},
	CodeDatasetResultTooLarge:     {http.StatusInsufficientStorage, "dataset result exceeds the configured row limit"},
	CodeExecutionError:            {http.StatusInternalServerError, "model execution failed"},
	CodeNotFound:                  {http.StatusNotFound, "requested resource not found"},
}

// CodeInstance is a Code with an overridden status and/or message,
// built via Code.WithMsg / Code.WithErr / Code.WithStatus.
type CodeInstance struct {
	code   Code
	status *int
	msg    *string
}

func (c Code) Status() int {
	if v, ok := codeValueMap[c]; ok {
		return v.Status
	}
	return http.StatusInternalServerError
}

func (c Code) Msg() string {
	if v, ok := codeValueMap[c]; ok {
		return v.Msg
	}
	return codeValueMap[CodeFailure].Msg
}

func (c Code) Code() int { return int(c) }

func (c Code) WithStatus(status int) CodeInstance { return CodeInstance{code: c, status: &status} }
func (c Code) WithMsg(msg string) CodeInstance    { return CodeInstance{code: c, msg: &msg} }
func (c Code) WithErr(err error) CodeInstance {
	msg := err.Error()
	return CodeInstance{code: c, msg: &msg}
}

func (ci CodeInstance) Status() int {
	if ci.status != nil {
		return *ci.status
	}
	return ci.code.Status()
}

func (ci CodeInstance) Msg() string {
	if ci.msg != nil {
		return *ci.msg
	}
	return ci.code.Msg()
}

func (ci CodeInstance) Code() int { return ci.code.Code() }

// Responder unifies Code and CodeInstance behind the fields ResponseJSON
// needs.
type Responder interface {
	Status() int
	Msg() string
	Code() int
}

var (
	_ Responder = Code(0)
	_ Responder = CodeInstance{}
)

// kindToCode maps a sqlerr.Kind to its wire Code, grounding the
// taxonomy's status codes in the original implementation's error
// ranges (_exceptions.py).
var kindToCode = map[sqlerr.Kind]Code{
	sqlerr.KindInvalidParameterSelection: CodeInvalidParameterSelection,
	sqlerr.KindInvalidInput:              CodeInvalidInput,
	sqlerr.KindUnauthorized:              CodeUnauthorized,
	sqlerr.KindForbidden:                 CodeForbidden,
	sqlerr.KindConfigurationError:        CodeConfigurationError,
	sqlerr.KindDatasetResultTooLarge:     CodeDatasetResultTooLarge,
	sqlerr.KindExecutionError:            CodeExecutionError,
}

// FromError maps an error into a Responder. Errors produced by the
// sqlerr package carry their Kind straight through to the matching
// Code; anything else becomes a generic CodeFailure with the error's
// message attached, never leaking an unclassified 500 with no body.
func FromError(err error) Responder {
	if err == nil {
		return CodeSuccess
	}
	if se, ok := sqlerr.As(err); ok {
		if code, ok := kindToCode[se.Kind]; ok {
			return code.WithMsg(se.Error())
		}
	}
	return CodeFailure.WithErr(err)
}

// ResponseJSON writes the uniform envelope {code, msg, data, request_id}.
func ResponseJSON(c *gin.Context, responder Responder, data ...any) {
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	c.JSON(responder.Status(), gin.H{
		"code":       responder.Code(),
		"msg":        responder.Msg(),
		"data":       payload,
		"request_id": c.GetString("request_id"),
	})
}

// ResponseError writes the uniform envelope for a Go error, deriving
// the Responder via FromError.
func ResponseError(c *gin.Context, err error) {
	ResponseJSON(c, FromError(err))
}
