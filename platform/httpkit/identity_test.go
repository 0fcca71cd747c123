package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthedContext(t *testing.T, userID uuid.UUID, roles []string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != uuid.Nil {
		c.Set(ContextUserIDKey, userID)
	}
	if roles != nil {
		c.Set(ContextRolesKey, roles)
	}
	return c, rec
}

func TestGetIdentityAuthenticated(t *testing.T) {
	userID := uuid.New()
	c, _ := newAuthedContext(t, userID, []string{"admin", "manager"})

	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		t.Fatal("identity not authenticated despite user id in context")
	}
	if id.UserID() != userID {
		t.Errorf("UserID() = %s, want %s", id.UserID(), userID)
	}
	if !id.HasRole("admin") || id.HasRole("tenant") {
		t.Errorf("HasRole mismatch for roles %v", id.Roles())
	}
}

func TestGetIdentityMissingUser(t *testing.T) {
	c, _ := newAuthedContext(t, uuid.Nil, []string{"admin"})

	if GetIdentity(c).IsAuthenticated() {
		t.Error("identity authenticated without a user id in context")
	}
}

func TestMustGetIdentityAbortsUnauthenticated(t *testing.T) {
	c, rec := newAuthedContext(t, uuid.Nil, nil)

	if id := MustGetIdentity(c); id != nil {
		t.Errorf("MustGetIdentity returned %v for an unauthenticated request", id)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		userID     uuid.UUID
		roles      []string
		wantStatus int
	}{
		{"has role", uuid.New(), []string{"admin"}, http.StatusOK},
		{"missing role", uuid.New(), []string{"manager"}, http.StatusForbidden},
		{"no roles", uuid.New(), []string{}, http.StatusForbidden},
		{"unauthenticated", uuid.Nil, nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthedContext(t, tt.userID, tt.roles)

			RequireRole("admin")(c)
			if !c.IsAborted() {
				c.Status(http.StatusOK)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
