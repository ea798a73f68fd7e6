package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/pkg/server"
)

const callbackPath = "/oauth/callback"

// callbackResult is what Google's redirect carried back
type callbackResult struct {
	code string
	err  error
}

// callbackRouter handles Google's redirect. Requests with another state are
// refused and ignored; the first matching one is delivered on results.
func callbackRouter(state string, results chan<- callbackResult) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(callbackPath, func(c *gin.Context) {
		if c.Query("state") != state {
			c.String(http.StatusBadRequest, "Unexpected authorization state.")
			return
		}

		var result callbackResult
		switch {
		case c.Query("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", c.Query("error"))
			c.String(http.StatusForbidden, "PibShift was not authorized. You can close this window.")
		case c.Query("code") == "":
			result.err = errors.New("no authorization code received")
			c.String(http.StatusBadRequest, "Authorization failed.")
		default:
			result.code = c.Query("code")
			c.String(http.StatusOK, "PibShift is authorized. You can close this window.")
		}

		select {
		case results <- result:
		default:
		}
	})

	return router
}

// awaitCode serves the callback on the login port until Google redirects,
// ctx ends or loginTimeout passes
func (a *Authorizer) awaitCode(ctx context.Context, state string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	results := make(chan callbackResult, 1)
	served := make(chan error, 1)
	addr := fmt.Sprintf("localhost:%d", a.port)
	go func() {
		served <- server.Serve(ctx, addr, callbackRouter(state, results), a.logger)
	}()

	select {
	case result := <-results:
		cancel()
		if err := <-served; err != nil {
			a.logger.Warn("Callback server did not stop cleanly", zap.Error(err))
		}
		return result.code, result.err
	case err := <-served:
		if err != nil {
			return "", err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("no authorization received within %v", loginTimeout)
		}
		return "", ctx.Err()
	}
}
