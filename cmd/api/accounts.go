package main

import (
	"errors"
	"net/http"
	"ratemovie/proj/internal/services/auth"
	"ratemovie/proj/internal/services/media"
)

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Name     string `json:"name" validate:"required,max=100"`
		Password string `json:"password" validate:"required,max=72"`
	}
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user, err := app.services.Auth.Register(r.Context(), input.Email, input.Name, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			app.Http.Conflict(w, r, err.Error())
		case errors.Is(err, auth.ErrPasswordTooLong):
			app.Http.UnprocessableEntity(w, r, map[string]string{"password": "The maximum length is 72 bytes"})
		case errors.Is(err, auth.ErrSessionUnavailable):
			// the account exists, only the automatic login failed
			app.Http.Created(w, r, envelop{"user": user}, auth.ErrSessionUnavailable.Error())
		default:
			app.Http.ServerError(w, r, err, auth.ErrRegistrationUnavailable.Error())
		}
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "")
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user, err := app.services.Auth.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAuthenticationUnavailable):
			app.Http.Unavailable(w, r, err, auth.ErrAuthenticationUnavailable.Error())
		case errors.Is(err, auth.ErrSessionUnavailable):
			app.Http.Unavailable(w, r, err, auth.ErrSessionUnavailable.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	if user == nil {
		app.Http.Unauthorized(w, r, "Invalid email or password")
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.services.Auth.SignOut(r.Context()); err != nil {
		app.Http.ServerError(w, r, err, auth.ErrSessionUnavailable.Error())
		return
	}
	app.Http.Ok(w, r, nil, "Signed out")
}

func (app *Application) me(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, envelop{"user": app.currentUser(r)}, "")
}

func (app *Application) saveProfilePhoto(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Source string `json:"source" validate:"required"`
	}
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user := app.currentUser(r)
	storedPath, err := app.services.Media.SaveProfilePhoto(r.Context(), user.ID, input.Source)
	if err != nil {
		app.photoError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"photo_path": storedPath}, "")
}

func (app *Application) recordProfilePhoto(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StoredPath string `json:"stored_path" validate:"required"`
	}
	if !app.readValidJSON(w, r, &input) {
		return
	}
	user := app.currentUser(r)
	if err := app.services.Media.RecordProfilePhoto(r.Context(), user.ID, input.StoredPath); err != nil {
		app.photoError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"photo_path": input.StoredPath}, "")
}

func (app *Application) photoError(w http.ResponseWriter, r *http.Request, err error) {
	var notRecorded *media.PhotoNotRecordedError
	switch {
	case errors.As(err, &notRecorded):
		app.Http.setupLogPerReq(r).Error("photo not recorded", "errMsg", err.Error())
		app.Http.Response(
			w, r,
			envelop{"stored_path": notRecorded.StoredPath},
			media.ErrPhotoNotRecorded.Error(),
			http.StatusServiceUnavailable,
		)
	case errors.Is(err, media.ErrPhotoNotSaved):
		app.Http.setupLogPerReq(r).Warn("photo not saved", "errMsg", err.Error())
		app.Http.UnprocessableEntity(w, r, map[string]string{"photo": media.ErrPhotoNotSaved.Error()})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
