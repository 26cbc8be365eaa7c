package main

import (
	"net/http"

	"github.com/go-chi/render"
)

type healthStatus struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Debug   bool   `json:"debug"`
	Version string `json:"version"`
}

// healthcheck answers 503 until the store is initialized, so a supervisor can
// tell a running process from a usable one.
func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	health := healthStatus{
		Status:  "available",
		Storage: app.cfg.Storage.Driver,
		Debug:   app.cfg.Debug,
		Version: version,
	}
	if _, err := app.store.Handle(); err != nil {
		app.Http.setupLogPerReq(r).Warn("storage not ready", "errMsg", err.Error())
		health.Status = "unavailable"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, health)
}
