package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"ratemovie/proj/internal/domain/models"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil && err != http.ErrAbortHandler {
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, fmt.Errorf("panic: %v", err), "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 5*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Limiter.Enabled {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				app.Http.ServerError(w, r, err, "")
				return
			}
			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
				clients[ip] = c
			}
			c.lastSeen = time.Now()
			allowed := c.limiter.Allow()
			mu.Unlock()
			if !allowed {
				log.Warn("rate limit exceeded", "ip", ip)
				app.Http.Response(
					w, r,
					envelop{"error": "rate limit exceeded"},
					"Can't process request see an error below.",
					http.StatusTooManyRequests,
				)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const CtxKeyUser CtxKey = "user"

// Authenticate puts the session's user into the request context. A session
// pointing at a user that no longer exists is cleared and the request goes on
// anonymously.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middlewares.Authenticate"
		log := app.Http.setupLogPerReq(r).With("op", op)
		var user *models.User
		userID, ok, err := app.services.Auth.LoggedInUserID(r.Context())
		if err != nil {
			log.Warn("Failed to read session", "errMsg", err.Error())
			ok = false
		}
		if ok {
			user, err = app.services.Auth.UserProfile(r.Context(), userID)
			if err != nil {
				app.Http.ServerError(w, r, err, "")
				return
			}
			if user == nil {
				log.Warn("session refers to a missing user, clearing it", "user_id", userID)
				if err := app.services.Auth.SignOut(r.Context()); err != nil {
					log.Error("Failed to clear stale session", "errMsg", err.Error())
				}
			}
		}
		r = r.WithContext(context.WithValue(r.Context(), CtxKeyUser, user))
		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.currentUser(r) == nil {
			app.Http.Unauthorized(w, r, "You must be signed in to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}
