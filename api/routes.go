package main

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	motors "github.com/jimiolaniyan/gomotors"
	"github.com/jimiolaniyan/gomotors/auth"
	"github.com/jimiolaniyan/gomotors/config"
	"github.com/jimiolaniyan/gomotors/session"
	"github.com/jimiolaniyan/gomotors/web"
)

var errTriggered = errors.New("intentional error")

// newServer builds the full handler: route table and the middleware every
// request passes through.
func newServer(cfg *config.Config, st *stores, log logrus.FieldLogger) (http.Handler, error) {
	inventory := motors.NewService(st.inventory)
	views, err := web.NewViews(inventory, auth.Viewer, log)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	accounts := auth.NewService(st.accounts, cfg.BcryptCost)

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(views.NotFound)
	metrics := web.NewMetrics()

	handle := func(method, path string, h http.Handler) {
		router.Handler(method, path, metrics.Instrument(method, path, h))
	}

	inv := motors.NewHandler(inventory, views)
	handle(http.MethodGet, "/", inv.Home())
	handle(http.MethodGet, "/inv/all", inv.AllVehicles())
	handle(http.MethodGet, "/inv/type/:classificationId", inv.ByClassification())
	handle(http.MethodGet, "/inv/detail/:invId", inv.Detail())
	handle(http.MethodGet, "/inv/search", inv.SearchForm())
	handle(http.MethodPost, "/inv/search", inv.Search())

	handle(http.MethodGet, "/inv", auth.RequireElevatedRole(inv.Management()))
	handle(http.MethodGet, "/inv/add-classification", auth.RequireElevatedRole(inv.AddClassificationForm()))
	handle(http.MethodPost, "/inv/add-classification", auth.RequireElevatedRole(inv.AddClassification()))
	handle(http.MethodGet, "/inv/add-vehicle", auth.RequireElevatedRole(inv.AddVehicleForm()))
	handle(http.MethodPost, "/inv/add-vehicle", auth.RequireElevatedRole(inv.AddVehicle()))

	acc := auth.NewHandler(accounts, st.accounts, tokens, views, cfg.Secure(), log)
	handle(http.MethodGet, "/account/register", acc.RegisterForm())
	handle(http.MethodPost, "/account/register", acc.Register())
	handle(http.MethodGet, auth.LoginPath, acc.LoginForm())
	handle(http.MethodPost, auth.LoginPath, acc.Login())
	handle(http.MethodGet, "/account", auth.RequireAuthenticated(acc.Management()))
	handle(http.MethodGet, "/account/update/:accountId", auth.RequireAuthenticated(acc.UpdateForm()))
	handle(http.MethodPost, "/account/update", auth.RequireAuthenticated(acc.Update()))
	handle(http.MethodPost, "/account/update-password", auth.RequireAuthenticated(acc.UpdatePassword()))
	handle(http.MethodGet, "/account/logout", auth.RequireAuthenticated(acc.Logout()))

	handle(http.MethodGet, "/error/trigger", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		views.Error(w, r, errTriggered)
	}))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	for _, dir := range []string{"css", "js", "images"} {
		router.ServeFiles("/"+dir+"/*filepath", http.Dir(filepath.Join(cfg.PublicDir, dir)))
	}

	return web.Chain(router,
		web.RequestLogger(log),
		web.Recover(views),
		session.Middleware(st.flashes, session.Options{
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.Secure(),
		}, log),
		auth.Authenticate(tokens, cfg.Secure(), log),
	), nil
}
