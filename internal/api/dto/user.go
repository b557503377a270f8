package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"rgarchitects/internal/user"
)

// UserRequest тело POST и PUT. Формат email на сервере не проверяется, только наличие.
type UserRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,notblank"`
	IsManager bool   `json:"isManager"`
}

func (r UserRequest) ToUser() *user.User {
	return &user.User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		IsManager: r.IsManager,
	}
}

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// В ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors группирует ошибки валидации по полям.
func FieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out[""] = []string{err.Error()}
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			out[field] = append(out[field], field+" is required")
		case "email":
			out[field] = append(out[field], field+" is not a valid email address")
		default:
			out[field] = append(out[field], field+" is invalid")
		}
	}
	return out
}
