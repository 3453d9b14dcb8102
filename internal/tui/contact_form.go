package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/store"
)

type contactFields struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Relation  string
	Birthday  string
	Notes     string
	Photo     string
	Private   bool
}

func fieldsFromContact(c store.Contact) contactFields {
	return contactFields{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.MobileNumber,
		Email:     c.Email,
		Relation:  c.RelationType,
		Birthday:  c.Birthday,
		Notes:     c.Notes,
		Photo:     c.ProfileImageURI,
		Private:   c.IsPrivate,
	}
}

// saveContact creates a contact when id is zero and rewrites every field of
// contact id otherwise. A new photo path is copied into the attachment store;
// the photo it replaces is removed once the row is written.
func saveContact(s *store.Store, files *attach.Store, id int64, f contactFields) (*store.Contact, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Birthday = strings.TrimSpace(f.Birthday)
	if f.Phone == "" {
		return nil, fmt.Errorf("%w: mobile number is required", store.ErrValidation)
	}

	var prev string
	if id != 0 {
		old, err := s.GetContact(id)
		if err != nil {
			return nil, err
		}
		if old == nil {
			return nil, errContactNotFound
		}
		prev = old.ProfileImageURI
	}

	photo := strings.TrimSpace(f.Photo)
	var copied string
	if photo != "" && photo != prev {
		if files == nil {
			return nil, errors.New("attachments are not configured")
		}
		a, err := files.CopyImage(expandHome(photo))
		if err != nil {
			return nil, err
		}
		photo, copied = a.Path, a.Path
	}

	c, err := writeContact(s, id, f, photo)
	if err != nil || c == nil {
		if copied != "" {
			_ = files.Remove(copied)
		}
		if err == nil {
			err = errContactNotFound
		}
		return nil, err
	}
	if prev != "" && prev != photo && files != nil {
		_ = files.Remove(prev)
	}
	return c, nil
}

func writeContact(s *store.Store, id int64, f contactFields, photo string) (*store.Contact, error) {
	if id == 0 {
		return s.CreateContact(store.ContactInput{
			FirstName:       f.FirstName,
			LastName:        f.LastName,
			MobileNumber:    f.Phone,
			Email:           f.Email,
			RelationType:    f.Relation,
			Birthday:        f.Birthday,
			ProfileImageURI: photo,
			Notes:           f.Notes,
			IsPrivate:       f.Private,
		})
	}
	return s.UpdateContact(id, store.ContactPatch{
		FirstName:       &f.FirstName,
		LastName:        &f.LastName,
		MobileNumber:    &f.Phone,
		Email:           &f.Email,
		RelationType:    &f.Relation,
		Birthday:        &f.Birthday,
		ProfileImageURI: &photo,
		Notes:           &f.Notes,
		IsPrivate:       &f.Private,
	})
}

func requiredField(name string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validPhotoField(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	ok, err := attach.IsImage(expandHome(v))
	if err != nil {
		return fmt.Errorf("cannot read %s", v)
	}
	if !ok {
		return errors.New("pick an image file")
	}
	return nil
}

func validBirthdayField(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

type contactFormModel struct {
	store  *store.Store
	files  *attach.Store
	st     styles
	width  int
	height int

	form      *huh.Form
	editingID int64
	fields    *contactFields // survives value copies
}

func newContactFormModel(s *store.Store, files *attach.Store, st styles) contactFormModel {
	return contactFormModel{store: s, files: files, st: st, fields: &contactFields{}}
}

func (m *contactFormModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *contactFormModel) setStyles(st styles) {
	m.st = st
}

func (m contactFormModel) open(msg openContactFormMsg) (contactFormModel, tea.Cmd) {
	m.editingID = 0
	*m.fields = contactFields{Relation: store.DefaultRelation, Private: msg.private}
	if msg.contact != nil {
		m.editingID = msg.contact.ID
		*m.fields = fieldsFromContact(*msg.contact)
	}

	relations := append([]string(nil), store.RelationTypes...)
	if r := m.fields.Relation; r != "" && !containsString(relations, r) {
		relations = append(relations, r)
	}
	relOptions := make([]huh.Option[string], len(relations))
	for i, r := range relations {
		relOptions[i] = huh.NewOption(r, r)
	}

	f := m.fields
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First Name").Value(&f.FirstName).Validate(requiredField("first name")),
			huh.NewInput().Title("Last Name").Value(&f.LastName),
			huh.NewInput().Title("Mobile Number").Value(&f.Phone).Validate(requiredField("mobile number")),
			huh.NewInput().Title("Email").Value(&f.Email),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Relation").Options(relOptions...).Value(&f.Relation),
			huh.NewInput().Title("Birthday (YYYY-MM-DD)").Value(&f.Birthday).Validate(validBirthdayField),
			huh.NewText().Title("Notes").Value(&f.Notes),
			huh.NewInput().Title("Photo (image path, optional)").Value(&f.Photo).Validate(validPhotoField),
			huh.NewConfirm().Title("Keep in private vault?").Value(&f.Private),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return m, m.form.Init()
}

func (m contactFormModel) update(msg tea.Msg) (contactFormModel, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return closeRouteMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.form = nil
		s, files, id, fields := m.store, m.files, m.editingID, *m.fields
		return m, func() tea.Msg {
			c, err := saveContact(s, files, id, fields)
			if err != nil {
				return closeRouteMsg{status: "Save contact", err: err}
			}
			return closeRouteMsg{status: "Saved " + c.FullName()}
		}
	}
	return m, cmd
}

func (m contactFormModel) view() string {
	title := "New Contact"
	if m.editingID != 0 {
		title = "Edit Contact"
	}
	formView := ""
	if m.form != nil {
		formView = m.form.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.st.title.Render(title), "", formView)
	return m.st.panel.Width(m.width - 4).Render(content)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
