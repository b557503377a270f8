// Package panel is the client-side resource panel for users: it loads the
// list, keeps the add/edit form state and talks to the REST API.
//
// One Panel serializes its own operations: while a load, save or delete is
// in flight every other mutating call returns ErrBusy.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"rgarchitects/internal/api/dto"
	"rgarchitects/internal/user"
	"rgarchitects/internal/user/client"
)

type State int

const (
	StateLoading State = iota
	StateIdle
	StateModalOpen
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateModalOpen:
		return "modal-open"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrBusy         = errors.New("another operation is in progress")
	ErrInvalidState = errors.New("operation not allowed")
	ErrInvalidForm  = errors.New("form is invalid")
	ErrUnknownUser  = errors.New("user is not in the table")
)

// Target says what a submitted form does: NewUser creates, Existing updates.
type Target interface {
	isTarget()
}

type NewUser struct{}

type Existing struct {
	ID int64
}

func (NewUser) isTarget()  {}
func (Existing) isTarget() {}

type Form struct {
	Target    Target `json:"-" validate:"-"`
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,email"`
	IsManager bool   `json:"isManager"`
}

func (f Form) Title() string {
	if _, ok := f.Target.(Existing); ok {
		return "Edit User"
	}
	return "Add User"
}

func (f Form) user() user.User {
	u := user.User{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		IsManager: f.IsManager,
	}
	if e, ok := f.Target.(Existing); ok {
		u.ID = e.ID
	}
	return u
}

// API is the subset of client.Client the panel calls.
type API interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, u user.User) (*user.User, error)
	Update(ctx context.Context, u user.User) error
	Delete(ctx context.Context, id int64) error
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// View is a copy of the panel state for rendering.
type View struct {
	State     State
	Users     []user.User
	Form      *Form
	FormError string
	Banner    string
	// Save и Cancel недоступны, пока идёт сохранение
	ControlsDisabled bool
}

type Panel struct {
	api     API
	confirm Confirmer

	mu        sync.Mutex
	state     State
	busy      bool
	users     []user.User
	form      *Form
	formError string
	banner    string
}

func New(api API, confirm Confirmer) *Panel {
	return &Panel{
		api:     api,
		confirm: confirm,
		state:   StateLoading,
		users:   []user.User{},
	}
}

func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		State:            p.state,
		Users:            append([]user.User(nil), p.users...),
		FormError:        p.formError,
		Banner:           p.banner,
		ControlsDisabled: p.state == StateSaving,
	}
	if p.form != nil {
		f := *p.form
		v.Form = &f
	}
	return v
}

// Load fetches the list. The table changes only when the request succeeds.
func (p *Panel) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.state == StateModalOpen || p.state == StateSaving {
		defer p.mu.Unlock()
		return p.stateErr("load")
	}
	p.busy = true
	p.mu.Unlock()

	return p.reload(ctx)
}

// reload ожидает, что busy уже выставлен вызывающим.
func (p *Panel) reload(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	users, err := p.api.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		p.state = StateError
		p.banner = "Failed to load users: " + client.Message(err)
		return err
	}
	p.users = users
	p.banner = ""
	p.state = StateIdle
	return nil
}

func (p *Panel) Add() error {
	return p.open("add", &Form{Target: NewUser{}})
}

func (p *Panel) Edit(id int64) error {
	p.mu.Lock()
	var form *Form
	for _, u := range p.users {
		if u.ID == id {
			form = &Form{
				Target:    Existing{ID: u.ID},
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
				IsManager: u.IsManager,
			}
			break
		}
	}
	p.mu.Unlock()

	if form == nil {
		return fmt.Errorf("%w: id %d", ErrUnknownUser, id)
	}
	return p.open("edit", form)
}

func (p *Panel) open(op string, form *Form) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		return ErrBusy
	}
	if p.state != StateIdle && p.state != StateError {
		return p.stateErr(op)
	}
	p.form = form
	p.formError = ""
	p.state = StateModalOpen
	return nil
}

// UpdateForm edits the open form in place.
func (p *Panel) UpdateForm(edit func(f *Form)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSaving {
		return ErrBusy
	}
	if p.state != StateModalOpen {
		return p.stateErr("edit form")
	}
	target := p.form.Target
	edit(p.form)
	p.form.Target = target
	return nil
}

func (p *Panel) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSaving {
		return ErrBusy
	}
	if p.state != StateModalOpen {
		return p.stateErr("cancel")
	}
	p.closeModal()
	return nil
}

// Submit creates or updates depending on the form target. On failure the
// modal stays open with an inline error; on success it closes and the list reloads.
func (p *Panel) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateSaving || p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.state != StateModalOpen {
		defer p.mu.Unlock()
		return p.stateErr("submit")
	}
	if err := dto.Validate.Struct(p.form); err != nil {
		p.formError = joinFieldErrors(dto.FieldErrors(err))
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidForm, p.formError)
	}
	form := *p.form
	p.state = StateSaving
	p.busy = true
	p.formError = ""
	p.mu.Unlock()

	var err error
	switch form.Target.(type) {
	case Existing:
		err = p.api.Update(ctx, form.user())
	default:
		_, err = p.api.Create(ctx, form.user())
	}

	if err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.busy = false
		p.state = StateModalOpen
		p.formError = "Failed to save user: " + client.Message(err)
		return err
	}

	p.mu.Lock()
	p.closeModal()
	p.mu.Unlock()

	return p.reload(ctx)
}

// Delete asks for confirmation first; declining is not an error.
func (p *Panel) Delete(ctx context.Context, id int64) error {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.state != StateIdle {
		defer p.mu.Unlock()
		return p.stateErr("delete")
	}
	p.mu.Unlock()

	if p.confirm == nil || !p.confirm.Confirm("Delete this user?") {
		return nil
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrBusy
	}
	// пока ждали подтверждения, могли открыть форму
	if p.state != StateIdle {
		defer p.mu.Unlock()
		return p.stateErr("delete")
	}
	p.busy = true
	p.mu.Unlock()

	if err := p.api.Delete(ctx, id); err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.busy = false
		p.banner = "Failed to delete user: " + client.Message(err)
		return err
	}

	return p.reload(ctx)
}

// DismissError hides the banner. After a failed load the panel falls back to
// the last rows it managed to load.
func (p *Panel) DismissError() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.banner = ""
	if p.state == StateError {
		p.state = StateIdle
	}
}

func (p *Panel) closeModal() {
	p.form = nil
	p.formError = ""
	p.state = StateIdle
}

func (p *Panel) stateErr(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, p.state)
}

func joinFieldErrors(errs map[string][]string) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, errs[f]...)
	}
	return strings.Join(msgs, "; ")
}
