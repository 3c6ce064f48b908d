package handler

import (
	"context"
	"net/http"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
	"github.com/brijeshpatel49/StaffMaster-sub001/pkg/respond"
)

type ctxKey int

const actorKey ctxKey = iota

// ActorFromHeaders builds the acting identity from the headers the
// upstream auth gateway sets on every request. The engine itself never
// authenticates; it only requires a complete, valid actor.
func ActorFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.Actor{
			ID:           r.Header.Get("X-Actor-ID"),
			Role:         model.Role(r.Header.Get("X-Actor-Role")),
			DepartmentID: r.Header.Get("X-Actor-Department"),
		}

		if actor.ID == "" || !actor.Role.IsValid() {
			respond.Error(w, r, http.StatusUnauthorized, "missing or invalid actor identity")
			return
		}
		if actor.Role == model.RoleManager && actor.DepartmentID == "" {
			respond.Error(w, r, http.StatusUnauthorized, "manager identity requires a department")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(r *http.Request) model.Actor {
	actor, _ := r.Context().Value(actorKey).(model.Actor)
	return actor
}
