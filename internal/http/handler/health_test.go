package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/internal/http/handler"
)

var _ = Describe("Health", func() {
	serve := func(check func(context.Context) error) int {
		router := gin.New()
		router.GET("/health", handler.Health(check))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w.Code
	}

	It("is healthy without a check", func() {
		Expect(serve(nil)).To(Equal(http.StatusOK))
	})

	It("reports 503 when a dependency is down", func() {
		Expect(serve(func(context.Context) error { return errors.New("redis: connection refused") })).
			To(Equal(http.StatusServiceUnavailable))
	})
})
