package calculator

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/testutil"
)

func newTestRouter(sessions *SessionHandler) http.Handler {
	observability.Logger = zap.NewNop()
	r := chi.NewRouter()
	r.Use(observability.RequestIDMiddleware)
	RegisterRoutes(r, sessions)
	return r
}

func TestBinaryOperations(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		path    string
		body    string
		result  float64
		display string
	}{
		{path: "/calculator/add", body: `{"a":2,"b":3}`, result: 5, display: "5"},
		{path: "/calculator/subtract", body: `{"a":2,"b":3}`, result: -1, display: "-1"},
		{path: "/calculator/multiply", body: `{"a":123456,"b":10000}`, result: 1234560000, display: "1.23e+9"},
		{path: "/calculator/divide", body: `{"a":1,"b":3}`, result: 1.0 / 3, display: "0.333333"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := testutil.PostJSON(router, tc.path, tc.body)
			testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

			var resp CalcResponse
			testutil.DecodeJSONBody(t, rr.Body, &resp)
			if resp.Result != tc.result {
				t.Fatalf("expected result %g, got %g", tc.result, resp.Result)
			}
			if resp.Display != tc.display {
				t.Fatalf("expected display %q, got %q", tc.display, resp.Display)
			}
		})
	}
}

func TestDivideByZeroReturnsBadRequest(t *testing.T) {
	router := newTestRouter(nil)

	rr := testutil.PostJSON(router, "/calculator/divide", `{"a":1,"b":0}`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)

	var resp handlers.ErrorResponse
	testutil.DecodeJSONBody(t, rr.Body, &resp)
	if !strings.Contains(resp.Error, "division by zero") {
		t.Fatalf("expected division by zero error, got %q", resp.Error)
	}
	if resp.RequestID == "" {
		t.Fatal("expected request_id in error body")
	}
}

func TestBinaryOperationRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(nil)

	rr := testutil.PostJSON(router, "/calculator/add", `{"a":`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)
}

func TestChainIsLeftToRight(t *testing.T) {
	router := newTestRouter(nil)

	body := `{"initial":2,"steps":[{"op":"add","value":3},{"op":"×","value":4},{"op":"-","value":0.5}]}`
	rr := testutil.PostJSON(router, "/calculator/chain", body)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var resp ChainResponse
	testutil.DecodeJSONBody(t, rr.Body, &resp)
	if resp.Result != 19.5 {
		t.Fatalf("expected 19.5, got %g", resp.Result)
	}
	if resp.Display != "19.5" {
		t.Fatalf("expected display %q, got %q", "19.5", resp.Display)
	}
	if len(resp.Steps) != 3 || resp.Steps[1].Op != "multiply" || resp.Steps[1].Result != 20 {
		t.Fatalf("unexpected steps: %+v", resp.Steps)
	}
}

func TestChainErrors(t *testing.T) {
	router := newTestRouter(nil)

	tests := map[string]struct {
		body string
		want string
	}{
		"empty steps":    {body: `{"initial":1,"steps":[]}`, want: "no steps provided"},
		"unknown op":     {body: `{"initial":1,"steps":[{"op":"pow","value":2}]}`, want: "step 0"},
		"divide by zero": {body: `{"initial":1,"steps":[{"op":"add","value":1},{"op":"divide","value":0}]}`, want: "step 1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rr := testutil.PostJSON(router, "/calculator/chain", tc.body)
			testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)

			var resp handlers.ErrorResponse
			testutil.DecodeJSONBody(t, rr.Body, &resp)
			if !strings.Contains(resp.Error, tc.want) {
				t.Fatalf("expected error containing %q, got %q", tc.want, resp.Error)
			}
		})
	}
}

func TestSessionRoutesNotMountedWithoutHandler(t *testing.T) {
	router := newTestRouter(nil)

	rr := testutil.PostJSON(router, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)
}
