package middleware_test

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
)

type testOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()

	return humatest.Wrap(t, humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0")))
}

func ok(msg string) *testOutput {
	out := &testOutput{}
	out.Body.Message = msg

	return out
}
