package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/jimiolaniyan/gomotors/session"
	"github.com/jimiolaniyan/gomotors/validation"
	"github.com/jimiolaniyan/gomotors/web"
)

const (
	accountPath = "/account"

	msgBadCredentials   = "Please check your credentials and try again."
	msgRegistered       = "Congratulations, you are registered. Please log in."
	msgAccountUpdated   = "Account information successfully updated."
	msgAccountNotSaved  = "Sorry, the account information was not updated."
	msgPasswordUpdated  = "Password successfully updated."
	msgPasswordNotSaved = "Sorry, the password was not updated."
	msgLoggedOut        = "You have been logged out."
)

// Handler serves the account pages.
type Handler struct {
	svc      Service
	accounts Repository
	tokens   *TokenCodec
	views    web.Renderer
	secure   bool
	log      logrus.FieldLogger
}

func NewHandler(svc Service, accounts Repository, tokens *TokenCodec, views web.Renderer, secure bool, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, accounts: accounts, tokens: tokens, views: views, secure: secure, log: log}
}

func (h *Handler) RegisterForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "account/register", web.Page{Title: "Register"})
	})
}

// Register validates and stores a new customer account.
func (h *Handler) Register() http.Handler {
	register := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := h.svc.RegisterAccount(r.Context(), registerAccountRequest{
			FirstName: r.PostForm.Get(fieldFirstName),
			LastName:  r.PostForm.Get(fieldLastName),
			Email:     r.PostForm.Get(fieldEmail),
			Password:  r.PostForm.Get(fieldPassword),
		})
		switch {
		case errors.Is(err, ErrExistingEmail):
			h.registerFailed(w, r, validation.Outcome{{Field: fieldEmail, Message: msgEmailRegistered}})
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		session.Flash(r.Context(), msgRegistered)
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	})

	return RegistrationValidator(h.accounts).Guard(register, h.registerFailed, h.views.Error)
}

func (h *Handler) registerFailed(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
	h.views.Render(w, r, http.StatusBadRequest, "account/register", web.Page{
		Title:  "Register",
		Errors: out,
		Form:   validation.Echo(r.PostForm, fieldPassword),
	})
}

func (h *Handler) LoginForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "account/login", web.Page{Title: "Login"})
	})
}

// Login checks the credentials and hands the browser a token cookie.
func (h *Handler) Login() http.Handler {
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, err := h.svc.ValidateCredentials(r.Context(), validateCredentialsRequest{
			Email:    r.PostForm.Get(fieldEmail),
			Password: r.PostForm.Get(fieldPassword),
		})
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.views.Render(w, r, http.StatusBadRequest, "account/login", web.Page{
				Title:   "Login",
				Message: msgBadCredentials,
				Form:    validation.Echo(r.PostForm, fieldPassword),
			})
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		if err := h.startSession(w, acc.Claim()); err != nil {
			h.views.Error(w, r, err)
			return
		}
		http.Redirect(w, r, accountPath, http.StatusSeeOther)
	})

	return LoginValidator().Guard(login, func(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
		h.views.Render(w, r, http.StatusBadRequest, "account/login", web.Page{
			Title:  "Login",
			Errors: out,
			Form:   validation.Echo(r.PostForm, fieldPassword),
		})
	}, h.views.Error)
}

func (h *Handler) Management() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "account/management", web.Page{Title: "Account Management"})
	})
}

// UpdateForm shows the profile and password forms for the viewer's own
// account.
func (h *Handler) UpdateForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(httprouter.ParamsFromContext(r.Context()).ByName("accountId"))
		if err != nil {
			h.views.NotFound(w, r)
			return
		}
		if !h.ownAccount(w, r, id) {
			return
		}

		acc, err := h.svc.GetAccount(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotFound):
			h.views.NotFound(w, r)
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		h.views.Render(w, r, http.StatusOK, "account/update", web.Page{
			Title: "Edit Account",
			Form:  accountForm(acc),
		})
	})
}

// Update changes the viewer's name and email and re-issues the token so the
// claim matches the stored account.
func (h *Handler) Update() http.Handler {
	update := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(r.PostForm.Get(fieldAccountID))
		if err != nil {
			h.denied(w, r)
			return
		}
		if !h.ownAccount(w, r, id) {
			return
		}

		acc, err := h.svc.UpdateAccount(r.Context(), updateAccountRequest{
			ID:        id,
			FirstName: r.PostForm.Get(fieldFirstName),
			LastName:  r.PostForm.Get(fieldLastName),
			Email:     r.PostForm.Get(fieldEmail),
		})
		switch {
		case errors.Is(err, ErrExistingEmail):
			h.updateFailed(w, r, validation.Outcome{{Field: fieldEmail, Message: msgEmailInUse}})
			return
		case errors.Is(err, ErrNotFound):
			session.Flash(r.Context(), msgAccountNotSaved)
			http.Redirect(w, r, updatePath(id), http.StatusSeeOther)
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		if err := h.startSession(w, acc.Claim()); err != nil {
			h.views.Error(w, r, err)
			return
		}
		session.Flash(r.Context(), msgAccountUpdated)
		http.Redirect(w, r, accountPath, http.StatusSeeOther)
	})

	return UpdateAccountValidator(h.accounts).Guard(update, h.updateFailed, h.views.Error)
}

// UpdatePassword replaces the viewer's password hash.
func (h *Handler) UpdatePassword() http.Handler {
	update := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(r.PostForm.Get(fieldAccountID))
		if err != nil {
			h.denied(w, r)
			return
		}
		if !h.ownAccount(w, r, id) {
			return
		}

		err = h.svc.UpdatePassword(r.Context(), updatePasswordRequest{ID: id, Password: r.PostForm.Get(fieldPassword)})
		switch {
		case errors.Is(err, ErrNotFound):
			session.Flash(r.Context(), msgPasswordNotSaved)
			http.Redirect(w, r, updatePath(id), http.StatusSeeOther)
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		session.Flash(r.Context(), msgPasswordUpdated)
		http.Redirect(w, r, accountPath, http.StatusSeeOther)
	})

	return UpdatePasswordValidator().Guard(update, h.updateFailed, h.views.Error)
}

// updateFailed re-renders the update view. Profile fields the submission did
// not carry are refilled from the viewer's stored account; a submission for
// any other account is refused before anything is read.
func (h *Handler) updateFailed(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
	form := map[string]string{}
	if id, err := ParseID(r.PostForm.Get(fieldAccountID)); err == nil {
		if !h.ownAccount(w, r, id) {
			return
		}
		if acc, err := h.svc.GetAccount(r.Context(), id); err == nil {
			form = accountForm(acc)
		}
	}
	for field, value := range validation.Echo(r.PostForm, fieldPassword) {
		form[field] = value
	}

	h.views.Render(w, r, http.StatusBadRequest, "account/update", web.Page{
		Title:  "Edit Account",
		Errors: out,
		Form:   form,
	})
}

func (h *Handler) Logout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clearTokenCookie(w, h.secure)
		session.Flash(r.Context(), msgLoggedOut)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (h *Handler) startSession(w http.ResponseWriter, claim Claim) error {
	token, err := h.tokens.Issue(claim)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	setTokenCookie(w, token, h.tokens.TTL(), h.secure)
	return nil
}

// ownAccount reports whether id is the viewer's account. Otherwise it sends the
// viewer back to the account page and returns false.
func (h *Handler) ownAccount(w http.ResponseWriter, r *http.Request, id ID) bool {
	viewer, ok := ViewerFrom(r.Context())
	if ok && viewer.ID == id {
		return true
	}
	h.log.WithFields(logrus.Fields{"path": r.URL.Path, "account": id}).Debug("refusing access to another account")
	h.denied(w, r)
	return false
}

func (h *Handler) denied(w http.ResponseWriter, r *http.Request) {
	session.Flash(r.Context(), msgPermissionDenied)
	http.Redirect(w, r, accountPath, http.StatusSeeOther)
}

func accountForm(acc *Account) map[string]string {
	return map[string]string{
		fieldFirstName: acc.FirstName,
		fieldLastName:  acc.LastName,
		fieldEmail:     acc.Email,
		fieldAccountID: acc.ID.String(),
	}
}

func updatePath(id ID) string {
	return "/account/update/" + id.String()
}
