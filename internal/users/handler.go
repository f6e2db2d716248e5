// Package users serves account administration.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/table"
	"github.com/hawi-pms/console/internal/view"
)

const (
	basePath   = "/users"
	exportFile = "users.csv"
	roleParam  = "role"
)

// Roles lists the roles offered by the user forms.
var Roles = []string{rbac.SuperAdmin, rbac.Admin, rbac.Pharmacist, rbac.Cashier, rbac.Inventory}

// API is the slice of the backend user administration uses.
type API interface {
	ListUsers(ctx context.Context) ([]backend.User, error)
	CreateUser(ctx context.Context, in backend.UserInput) (backend.User, error)
	UpdateUser(ctx context.Context, id int64, in backend.UserUpdate) (backend.User, error)
	SetUserStatus(ctx context.Context, id int64, active bool) (backend.User, error)
	ResetUserPassword(ctx context.Context, id int64, newPassword string) error
	DeleteUser(ctx context.Context, id int64) error
}

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	api       API
	responder *view.Responder
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, api API, responder *view.Responder, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, api: api, responder: responder, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRoles(rbac.UserAdmins...))
	r.Get("/", h.list)
	r.Get("/export.csv", h.export)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.edit)
	r.Post("/{id}", h.update)
	r.Post("/{id}/status", h.setStatus)
	r.Post("/{id}/password", h.resetPassword)
	r.Post("/{id}/delete", h.delete)
}

var searchFields = table.Names[backend.User]("name", "email", "role")

var csvColumns = []table.Column[backend.User]{
	table.Col[backend.User]("Name", "name"),
	table.Col[backend.User]("Email", "email"),
	table.Col[backend.User]("Role", "role"),
	table.Col[backend.User]("Status", "status"),
}

// filterUsers applies the text search, then the role filter. An empty role
// keeps every user.
func filterUsers(users []backend.User, q table.Query, role string) []backend.User {
	filtered := table.FilterByQuery(users, q.Text, searchFields...)
	if role == "" {
		return filtered
	}
	return table.Where(filtered, func(u backend.User) bool { return u.Role == role })
}

type listPage struct {
	View        table.View[backend.User]
	Role        string
	Roles       []string
	ActiveCount int
	Form        userForm
	Errors      view.FormErrors
	LoadError   *view.LoadError
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, userForm{Role: rbac.SuperAdmin}, nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form userForm, errs view.FormErrors, status int) {
	q := table.ParseQuery(r.URL.Query())
	role := strings.TrimSpace(r.URL.Query().Get(roleParam))
	page := listPage{Role: role, Roles: Roles, Form: form, Errors: errs}
	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		h.logger.Warn("load users", slog.Any("error", err))
		page.LoadError = view.NewLoadError(r, err)
	}
	for _, u := range users {
		if u.Active {
			page.ActiveCount++
		}
	}
	var extra url.Values
	if role != "" {
		extra = url.Values{roleParam: {role}}
	}
	filtered := filterUsers(users, q, role)
	page.View = table.NewView(basePath, q, table.Paginate(filtered, q.Page, q.PageSize), extra)
	h.responder.Render(w, r, "pages/users.html", "Users", page, status)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		h.responder.Fail(w, r, basePath, "export users", err)
		return
	}
	q := table.ParseQuery(r.URL.Query())
	filtered := filterUsers(users, q, strings.TrimSpace(r.URL.Query().Get(roleParam)))
	h.responder.CSV(w, r, exportFile, table.BuildCSV(filtered, csvColumns))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	in, errs := form.input()
	if errs.Any() {
		form.Password = ""
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	created, err := h.api.CreateUser(r.Context(), in)
	if err != nil {
		h.responder.Fail(w, r, basePath, "create user", err)
		return
	}
	h.logger.Info("user created", slog.Int64("user_id", created.ID), slog.String("role", created.Role))
	msg := MessageCreated
	if in.Password != nil {
		msg = "User created."
	}
	h.responder.Success(w, r, basePath, msg)
}

func (h *Handler) find(ctx context.Context, id int64) (backend.User, error) {
	users, err := h.api.ListUsers(ctx)
	if err != nil {
		return backend.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return backend.User{}, &backend.Error{Status: http.StatusNotFound, Detail: "User not found"}
}

type editPage struct {
	User   backend.User
	Form   userForm
	Roles  []string
	Errors view.FormErrors
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, err := h.find(r.Context(), id)
	if err != nil {
		h.responder.Fail(w, r, basePath, "load user", err)
		return
	}
	h.responder.Render(w, r, "pages/user_edit.html", "Edit user", editPage{User: user, Form: formFromUser(user), Roles: Roles}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	up, errs := form.update()
	if errs.Any() {
		user := backend.User{ID: id, Name: form.Name}
		h.responder.Render(w, r, "pages/user_edit.html", "Edit user", editPage{User: user, Form: form, Roles: Roles, Errors: errs}, http.StatusBadRequest)
		return
	}
	if _, err := h.api.UpdateUser(r.Context(), id, up); err != nil {
		h.responder.Fail(w, r, basePath+"/"+strconv.FormatInt(id, 10)+"/edit", "update user", err)
		return
	}
	h.responder.Success(w, r, basePath, "User updated.")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	active, err := strconv.ParseBool(r.PostFormValue("active"))
	if err != nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	back := view.ReturnTo(r, basePath)
	if _, err := h.api.SetUserStatus(r.Context(), id, active); err != nil {
		h.responder.Fail(w, r, back, "update user status", err)
		return
	}
	h.logger.Info("user status changed", slog.Int64("user_id", id), slog.Bool("active", active))
	h.responder.Success(w, r, back, "User status updated.")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	back := view.ReturnTo(r, basePath)
	form := resetForm{NewPassword: strings.TrimSpace(r.PostFormValue("new_password"))}
	if errs := view.CheckForm(form, nil); errs.Any() {
		h.responder.RedirectWithFlash(w, r, back, "error", errs["NewPassword"])
		return
	}
	if err := h.api.ResetUserPassword(r.Context(), id, form.NewPassword); err != nil {
		h.responder.Fail(w, r, back, "reset password", err)
		return
	}
	h.logger.Info("password reset", slog.Int64("user_id", id))
	h.responder.Success(w, r, back, "Password reset completed.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	back := view.ReturnTo(r, basePath)
	if err := h.api.DeleteUser(r.Context(), id); err != nil {
		h.responder.Fail(w, r, back, "delete user", err)
		return
	}
	h.responder.Success(w, r, back, "User deleted.")
}
