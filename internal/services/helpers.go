package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/pointers"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
)

// requestUser returns the authenticated caller or a 401.
func requestUser(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctxutil.Default(ctx))
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Unauthorized")
	}
	return rd, nil
}

func isRole(rd *ctxutil.RequestData, roles ...types.Role) bool {
	for _, r := range roles {
		if strings.EqualFold(rd.Role, string(r)) {
			return true
		}
	}
	return false
}

func isStaff(rd *ctxutil.RequestData) bool {
	return isRole(rd, types.RoleAdmin, types.RoleSubAdmin)
}

func internalErr(op string, err error) error {
	return apierr.New(http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return pointers.Ptr(strings.TrimSpace(*s))
}
