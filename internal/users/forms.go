package users

import (
	"net/http"
	"strings"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/view"
)

// MessageCreated confirms a new account. The backend applies its default
// password when none is given.
const MessageCreated = "User created. Default password applied."

type userForm struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email,max=255"`
	Role     string `validate:"required,oneof='Super Admin' Admin Pharmacist Cashier Inventory"`
	Password string `validate:"omitempty,min=6,max=128"`
}

func formFromRequest(r *http.Request) userForm {
	return userForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Role:     strings.TrimSpace(r.PostFormValue("role")),
		Password: strings.TrimSpace(r.PostFormValue("password")),
	}
}

func formFromUser(u backend.User) userForm {
	form := userForm{Name: u.Name, Role: u.Role}
	if u.Email != nil {
		form.Email = *u.Email
	}
	return form
}

func (f userForm) input() (backend.UserInput, view.FormErrors) {
	in := backend.UserInput{Name: f.Name, Email: f.Email, Role: f.Role}
	if f.Password != "" {
		password := f.Password
		in.Password = &password
	}
	return in, view.CheckForm(f, nil)
}

func (f userForm) update() (backend.UserUpdate, view.FormErrors) {
	f.Password = ""
	return backend.UserUpdate{Name: f.Name, Email: f.Email, Role: f.Role}, view.CheckForm(f, nil)
}

type resetForm struct {
	NewPassword string `validate:"omitempty,min=6,max=128" label:"New password"`
}
