package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"singmerge/internal/shared/utils"
)

const (
	// HeaderAPIVersion is the custom header for API version negotiation.
	HeaderAPIVersion = "X-API-Version"

	// ContextKeyAPIVersion is the Gin context key for the resolved API version.
	ContextKeyAPIVersion = "api_version"

	// CurrentAPIVersion is the latest supported API version.
	CurrentAPIVersion = 1

	// MinAPIVersion is the minimum supported API version.
	MinAPIVersion = 1
)

var acceptVersionRegex = regexp.MustCompile(`application/vnd\.singmerge\.v(\d+)\+json`)

// APIVersion resolves the requested API version from X-API-Version or an
// "application/vnd.singmerge.v1+json" Accept header and echoes it back.
// Unsupported versions are rejected with 406.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		version, ok := resolveAPIVersion(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusNotAcceptable,
				fmt.Sprintf("unsupported API version, supported: %d-%d", MinAPIVersion, CurrentAPIVersion))
			c.Abort()
			return
		}
		c.Set(ContextKeyAPIVersion, version)
		c.Header(HeaderAPIVersion, strconv.Itoa(version))
		c.Next()
	}
}

// resolveAPIVersion returns false when a version is requested but outside the supported range.
func resolveAPIVersion(c *gin.Context) (int, bool) {
	if h := c.GetHeader(HeaderAPIVersion); h != "" {
		return checkVersion(h)
	}

	if matches := acceptVersionRegex.FindStringSubmatch(c.GetHeader("Accept")); len(matches) == 2 {
		return checkVersion(matches[1])
	}

	return CurrentAPIVersion, true
}

func checkVersion(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < MinAPIVersion || v > CurrentAPIVersion {
		return 0, false
	}
	return v, true
}
