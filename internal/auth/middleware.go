package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const ginCallerKey = "user_id"

// GinMiddleware attaches the caller to the request context when a valid
// bearer token is present. Requests without one pass through unauthenticated;
// handlers decide whether an identity is required.
func GinMiddleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		userID, err := v.ParseHeader(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"reason":  "UNAUTHENTICATED",
				"message": "Invalid or expired token",
			}})
			return
		}
		c.Set(ginCallerKey, userID)
		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), userID))
		c.Next()
	}
}

// UnaryServerInterceptor does the same for gRPC using the "authorization"
// metadata key. Health checks are left alone.
func UnaryServerInterceptor(v *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}
		userID, err := v.ParseHeader(values[0])
		if err != nil {
			if se, ok := status.FromError(err); ok {
				return nil, se.Err()
			}
			return nil, err
		}
		return handler(WithCaller(ctx, userID), req)
	}
}
