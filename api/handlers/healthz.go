package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/rocketshoes/api/responses"
	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	dbpkg "github.com/angelmondragon/rocketshoes/pkg/db"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
)

func Healthz(cfg *config.Config, logg *logger.Logger, db dbpkg.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"env":  cfg.App.Env,
			"path": r.URL.Path,
		})

		w.Header().Set("X-RocketShoes-Env", cfg.App.Env)
		if db != nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := db.Ping(pingCtx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		logg.Debug(ctx, "health.check")
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
