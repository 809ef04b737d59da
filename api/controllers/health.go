package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/customorder-backend/api/responses"
	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/db"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// StateReporter is any collaborator that exposes its init state.
type StateReporter interface {
	State() enums.CollaboratorState
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CustomOrder-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies and reports collaborator states.
// A collaborator that is not ready does not fail readiness; submissions
// degrade on their own.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]db.Pinger, collaborators map[string]StateReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CustomOrder-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed []string
		for name, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = append(failed, name)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "health.ready.dependency_down")
				}
				continue
			}
			checks[name] = "ok"
		}

		states := map[string]enums.CollaboratorState{}
		for name, c := range collaborators {
			if c == nil {
				continue
			}
			states[name] = c.State()
		}

		if len(failed) > 0 {
			sort.Strings(failed)
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"failed": failed, "checks": checks}))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":        "ready",
			"checks":        checks,
			"collaborators": states,
		})
	}
}
