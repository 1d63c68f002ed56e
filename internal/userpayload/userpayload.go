package userpayload

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

//--
// Request and Response payloads for users.
//--

// UserPayload is the public projection of a user. The password never
// serializes because model.User hides it.
type UserPayload struct {
	*model.User
}

func NewUserPayloadResponse(user *model.User) *UserPayload {
	return &UserPayload{User: user}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// UserRequest is the body of POST /users.
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Bind on UserRequest runs after unmarshalling and rejects incomplete input.
func (u *UserRequest) Bind(r *http.Request) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))

	v := apperr.NewValidationError()
	if u.Name == "" {
		v.Add("name", "The name field is required.")
	} else if len([]rune(u.Name)) > 255 {
		v.Add("name", "The name may not be greater than 255 characters.")
	}
	if u.Email == "" {
		v.Add("email", "The email field is required.")
	} else if _, err := mail.ParseAddress(u.Email); err != nil {
		v.Add("email", "The email must be a valid email address.")
	}
	if u.Password == "" {
		v.Add("password", "The password field is required.")
	}

	return v.OrNil()
}

func (u *UserRequest) User() *model.User {
	return &model.User{Name: u.Name, Email: u.Email, Password: u.Password}
}
