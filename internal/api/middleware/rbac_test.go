package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func rbacContext(role string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if role != "" {
		c.Set("role", role)
	}
	return c
}

func TestRBAC(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		pass    bool
	}{
		{"admin on admin route", "admin", []string{"admin"}, true},
		{"customer on shared route", "customer", []string{"customer", "admin"}, true},
		{"driver on admin route", "driver", []string{"admin"}, false},
		{"no role claim at all", "", []string{"admin", "customer"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := rbacContext(tc.role)
			reached := false
			err := RBAC(tc.allowed...)(func(c echo.Context) error {
				reached = true
				return c.NoContent(http.StatusOK)
			})(c)

			if tc.pass {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reached {
					t.Fatal("next handler not reached")
				}
				return
			}
			if reached {
				t.Fatal("next handler must not run for a forbidden role")
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusForbidden {
				t.Fatalf("expected 403 HTTPError, got %v", err)
			}
		})
	}
}
