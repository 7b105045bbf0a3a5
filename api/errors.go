package api

import (
	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

type errorBody struct {
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// writeError renders err with the HTTP status of its gRPC code, the same
// mapping the gateway applies to RPC errors.
func writeError(c *gin.Context, err error) {
	de := domain.AsError(err)
	c.JSON(runtime.HTTPStatusFromCode(de.Code), gin.H{"error": errorBody{
		Code:    de.Code.String(),
		Reason:  de.Reason,
		Message: de.Message,
	}})
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, domain.InvalidArgument("malformed request body"))
		return false
	}
	return true
}

// caller returns the authenticated user or writes 401.
func caller(c *gin.Context) (string, bool) {
	id, err := auth.RequireCaller(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return id, true
}
