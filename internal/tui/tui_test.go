package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/agenda"
	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/calllog"
	"github.com/sadopc/bondvault/internal/search"
	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/theme"
	"github.com/sadopc/bondvault/internal/vault"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestGate(t *testing.T, s *store.Store) *vault.Gate {
	t.Helper()
	g, err := vault.NewGate(vault.NewPINStore(vault.NewMemorySecretStore()), nil, s)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return g
}

func newTestApp(t *testing.T) (App, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	themes, err := theme.NewProvider(s, func() bool { return true })
	if err != nil {
		t.Fatalf("new theme provider: %v", err)
	}
	app := NewApp(Deps{
		Store:     s,
		Gate:      newTestGate(t, s),
		Themes:    themes,
		Files:     attach.New(t.TempDir()),
		ExportDir: t.TempDir(),
	})
	t.Cleanup(app.Close)
	return app, s
}

func mustContact(t *testing.T, s *store.Store, first, last, relation string) *store.Contact {
	t.Helper()
	c, err := s.CreateContact(store.ContactInput{FirstName: first, LastName: last, RelationType: relation, MobileNumber: "555-0100"})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	return c
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func testStyles() styles {
	return newStyles(theme.Resolve(theme.ModeDark, true).Palette)
}

func resize(a App, w, h int) App {
	m, _ := a.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return m.(App)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeDigits(t *testing.T, m vaultModel, digits string) vaultModel {
	t.Helper()
	for _, d := range digits {
		m, _ = m.update(runeKey(d))
	}
	return m
}

type fakeCalendar struct {
	err   error
	calls int
}

func (f *fakeCalendar) CreateEvent(title string, start time.Time, notes string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "evt-" + strconv.Itoa(f.calls), nil
}

// ============================================================
// Helper functions
// ============================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"line\nbreak", 20, "line break"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestOrDash(t *testing.T) {
	if orDash("  ") != "-" {
		t.Fatal("blank should render as dash")
	}
	if orDash("x") != "x" {
		t.Fatal("value should pass through")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		start, end      int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 10, 0, 10},
		{10, 20, 10, 5, 15},
		{19, 20, 10, 10, 20},
		{3, 20, 0, 3, 4},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.size)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = %d,%d, want %d,%d",
				tt.cursor, tt.n, tt.size, start, end, tt.start, tt.end)
		}
	}
}

func TestNextOption(t *testing.T) {
	opts := []string{search.All, "Friend", "Work"}
	if got := nextOption(opts, search.All); got != "Friend" {
		t.Fatalf("got %q", got)
	}
	if got := nextOption(opts, "Work"); got != search.All {
		t.Fatalf("should wrap, got %q", got)
	}
	if got := nextOption(opts, "Gone"); got != search.All {
		t.Fatalf("unknown should restart, got %q", got)
	}
	if got := nextOption(nil, "x"); got != search.All {
		t.Fatalf("empty options, got %q", got)
	}
}

func TestParseWhen(t *testing.T) {
	got, err := parseWhen("2026-03-04 09:30")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 4, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = parseWhen("2026-03-04")
	if err != nil || got.Hour() != 0 {
		t.Fatalf("date only: %v %v", got, err)
	}

	got, err = parseWhen("  ")
	if err != nil || !got.IsZero() {
		t.Fatal("blank should be the zero time")
	}

	if _, err := parseWhen("tomorrow"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitPaths(t *testing.T) {
	got := splitPaths(" /a.jpg, ,/b.pdf ")
	if len(got) != 2 || got[0] != "/a.jpg" || got[1] != "/b.pdf" {
		t.Fatalf("got %v", got)
	}
	if splitPaths("") != nil {
		t.Fatal("empty input should give no paths")
	}
}

func TestFieldValidators(t *testing.T) {
	if requiredField("notes")(" ") == nil {
		t.Fatal("blank should fail")
	}
	if validBirthdayField("") != nil || validBirthdayField("1990-05-01") != nil {
		t.Fatal("valid birthdays rejected")
	}
	if validBirthdayField("01/05/1990") == nil {
		t.Fatal("bad birthday accepted")
	}
	if validMinutes("5") != nil || validMinutes("0") != nil {
		t.Fatal("valid minutes rejected")
	}
	if validMinutes("-1") == nil || validMinutes("x") == nil {
		t.Fatal("bad minutes accepted")
	}
	if validCSVPath(t.TempDir()) == nil {
		t.Fatal("directory accepted as csv")
	}
}

func TestFormatAutoLock(t *testing.T) {
	tests := map[int]string{0: "off", -5: "off", 300: "5 min", 45: "45 s"}
	for in, want := range tests {
		if got := formatAutoLock(in); got != want {
			t.Errorf("formatAutoLock(%d) = %q, want %q", in, got, want)
		}
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	expected := []string{"Contacts", "Timeline", "Reminders", "Vault", "Settings"}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("view %d: expected %q, got %q", i, name, viewNames[i])
		}
	}
}

// ============================================================
// Idle lock
// ============================================================

func TestIdleLock(t *testing.T) {
	now := time.Now()
	l := newIdleLock(time.Minute)
	l.recordActivity(now)

	if l.expired(now.Add(30 * time.Second)) {
		t.Fatal("should not expire early")
	}
	if got := l.remaining(now.Add(20 * time.Second)); got != 40*time.Second {
		t.Fatalf("remaining = %v", got)
	}
	if !l.expired(now.Add(61 * time.Second)) {
		t.Fatal("should expire after the timeout")
	}
	if l.remaining(now.Add(2*time.Minute)) != 0 {
		t.Fatal("remaining should floor at zero")
	}

	l.setTimeout(0)
	if l.expired(now.Add(24 * time.Hour)) {
		t.Fatal("zero timeout never expires")
	}
	if l.remaining(now) != 0 {
		t.Fatal("disabled lock has no remaining time")
	}
}

// ============================================================
// Contacts
// ============================================================

func TestSaveContactCreateAndUpdate(t *testing.T) {
	s := newTestStore(t)

	c, err := saveContact(s, nil, 0, contactFields{FirstName: "  Ann ", LastName: "Lee", Phone: " 555-0100 ", Relation: "Friend", Birthday: "1990-05-01"})
	if err != nil {
		t.Fatal(err)
	}
	if c.FirstName != "Ann" || c.MobileNumber != "555-0100" || c.RelationType != "Friend" {
		t.Fatalf("unexpected contact %+v", c)
	}

	f := fieldsFromContact(*c)
	f.Email = "ann@example.com"
	f.Private = true
	updated, err := saveContact(s, nil, c.ID, f)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Email != "ann@example.com" || !updated.IsPrivate {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := saveContact(s, nil, 0, contactFields{}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := saveContact(s, nil, 9999, f); !errors.Is(err, errContactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveContactRequiresMobile(t *testing.T) {
	s := newTestStore(t)

	_, err := saveContact(s, nil, 0, contactFields{FirstName: "Ann", Phone: "   "})
	if !errors.Is(err, store.ErrValidation) || !strings.Contains(err.Error(), "mobile number") {
		t.Fatalf("expected mobile number error, got %v", err)
	}
	if list, _ := s.ListAllContacts(); len(list) != 0 {
		t.Fatal("nothing should be stored")
	}
	if err := requiredField("mobile number")(""); err == nil || !strings.Contains(err.Error(), "mobile number is required") {
		t.Fatalf("form validator: %v", err)
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func TestSaveContactPhoto(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())

	first := writeFile(t, "ann.png", pngHeader)
	c, err := saveContact(s, files, 0, contactFields{FirstName: "Ann", Phone: "555-0100", Photo: first})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(c.ProfileImageURI, files.Dir()) {
		t.Fatalf("photo should be copied into app storage: %q", c.ProfileImageURI)
	}
	old := c.ProfileImageURI

	// Saving again with the stored path keeps the same copy.
	same, err := saveContact(s, files, c.ID, fieldsFromContact(*c))
	if err != nil {
		t.Fatal(err)
	}
	if same.ProfileImageURI != old {
		t.Fatalf("photo changed on a plain save: %q", same.ProfileImageURI)
	}

	f := fieldsFromContact(*c)
	f.Photo = writeFile(t, "ann2.png", pngHeader)
	updated, err := saveContact(s, files, c.ID, f)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ProfileImageURI == old {
		t.Fatal("photo should be replaced")
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("replaced photo should be removed")
	}
	left, _ := os.ReadDir(files.Dir())
	if len(left) != 1 {
		t.Fatalf("expected 1 stored photo, found %d", len(left))
	}
}

func TestSaveContactRejectsNonImagePhoto(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	doc := writeFile(t, "notes.txt", []byte("plain text"))

	_, err := saveContact(s, files, 0, contactFields{FirstName: "Ann", Phone: "555-0100", Photo: doc})
	if !errors.Is(err, attach.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if list, _ := s.ListAllContacts(); len(list) != 0 {
		t.Fatal("nothing should be stored")
	}
	left, _ := os.ReadDir(files.Dir())
	if len(left) != 0 {
		t.Fatalf("rejected photo should not be kept, found %d", len(left))
	}

	if err := validPhotoField(doc); err == nil {
		t.Fatal("form should reject a text file")
	}
	if err := validPhotoField(writeFile(t, "a.png", pngHeader)); err != nil {
		t.Fatalf("png should pass: %v", err)
	}
	if err := validPhotoField(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("missing file should fail")
	}
	if err := validPhotoField(" "); err != nil {
		t.Fatal("photo is optional")
	}
}

func TestContactsModelFilters(t *testing.T) {
	s := newTestStore(t)
	mustContact(t, s, "Ann", "Lee", "Friend")
	mustContact(t, s, "Bob", "Ray", "Work")
	mustContact(t, s, "Anna", "Ray", "Work")

	m := newContactsModel(s, testStyles(), false)
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())
	if len(m.filtered) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(m.filtered))
	}

	// Search narrows by name.
	m, _ = m.update(runeKey('/'))
	if !m.capturing() {
		t.Fatal("search should capture keys")
	}
	for _, r := range "ann" {
		m, _ = m.update(runeKey(r))
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.capturing() {
		t.Fatal("enter should leave search")
	}
	if len(m.filtered) != 2 {
		t.Fatalf("expected Ann and Anna, got %d", len(m.filtered))
	}

	// The relation filter intersects with the query.
	for m.relation != "Work" {
		m, _ = m.update(runeKey('f'))
	}
	if len(m.filtered) != 1 || m.filtered[0].FirstName != "Anna" {
		t.Fatalf("expected only Anna, got %+v", m.filtered)
	}

	// esc clears both.
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.filtered) != 3 || m.relation != search.All {
		t.Fatal("esc should reset query and filter")
	}

	if !strings.Contains(m.view(), "Anna") {
		t.Fatal("view should list contacts")
	}
}

func TestContactsModelIgnoresOtherPartition(t *testing.T) {
	s := newTestStore(t)
	m := newContactsModel(s, testStyles(), true)
	m, _ = m.update(contactsLoadedMsg{private: false, contacts: []store.Contact{{FirstName: "Ann"}}})
	if len(m.all) != 0 {
		t.Fatal("private list must ignore public contacts")
	}
}

func TestContactsModelOpensProfile(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")

	m := newContactsModel(s, testStyles(), false)
	m, _ = m.update(m.refresh()())
	_, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should navigate")
	}
	msg, ok := cmd().(openProfileMsg)
	if !ok || msg.id != strconv.FormatInt(c.ID, 10) {
		t.Fatalf("unexpected message %#v", msg)
	}
}

// ============================================================
// Profile
// ============================================================

func TestFetchProfile(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "Lee", "Friend")
	if _, err := s.CreateInteraction(store.InteractionInput{ContactID: c.ID, Type: store.InteractionCall, Notes: "hi"}); err != nil {
		t.Fatal(err)
	}

	p, err := fetchProfile(s, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.contact.ID != c.ID || len(p.interactions) != 1 || len(p.media) != 0 {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := fetchProfile(s, 9999); !errors.Is(err, errContactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadProfileRejectsBadID(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"", "abc", "-3", "0"} {
		msg, ok := loadProfile(s, id, true)().(closeRouteMsg)
		if !ok || msg.err == nil {
			t.Fatalf("id %q: expected an error, got %#v", id, msg)
		}
	}
}

func TestLoadProfilePrivateNeedsVault(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Sam", "", "")
	if err := s.SetContactPrivate(c.ID, true); err != nil {
		t.Fatal(err)
	}
	id := strconv.FormatInt(c.ID, 10)

	msg, ok := loadProfile(s, id, false)().(closeRouteMsg)
	if !ok || !errors.Is(msg.err, errVaultLocked) {
		t.Fatalf("expected locked vault error, got %#v", msg)
	}
	if _, ok := loadProfile(s, id, true)().(profileLoadedMsg); !ok {
		t.Fatal("open vault should load the profile")
	}
}

func TestPurgeContactRemovesFiles(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c := mustContact(t, s, "Ann", "", "")

	src := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(src, []byte("\x89PNG\r\n\x1a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := logInteraction(s, files, *c, interactionFields{Type: store.InteractionMeeting, Notes: "lunch", Attachments: src}); err != nil {
		t.Fatal(err)
	}
	media, _ := s.ListMedia(c.ID)
	if len(media) != 1 {
		t.Fatalf("expected 1 media row, got %d", len(media))
	}

	if err := purgeContact(s, files, nopLogger(), *c, media); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(media[0].URI); !os.IsNotExist(err) {
		t.Fatal("attachment file should be removed")
	}
	if got, _ := s.GetContact(c.ID); got != nil {
		t.Fatal("contact should be gone")
	}
	if err := purgeContact(s, files, nopLogger(), *c, nil); !errors.Is(err, errContactNotFound) {
		t.Fatalf("second purge: %v", err)
	}
}

func TestPurgeContactRemovesPhoto(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c, err := saveContact(s, files, 0, contactFields{FirstName: "Ann", Phone: "555-0100", Photo: writeFile(t, "ann.png", pngHeader)})
	if err != nil {
		t.Fatal(err)
	}

	if err := purgeContact(s, files, nopLogger(), *c, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.ProfileImageURI); !os.IsNotExist(err) {
		t.Fatal("profile photo should be removed")
	}
}

func TestProfileViewShowsPhoto(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c, err := saveContact(s, files, 0, contactFields{FirstName: "Ann", Phone: "555-0100", Photo: writeFile(t, "ann.png", pngHeader)})
	if err != nil {
		t.Fatal(err)
	}

	m := newProfileModel(s, files, nopLogger(), func() bool { return true }, testStyles())
	m.setSize(120, 40)
	loaded, ok := loadProfile(s, strconv.FormatInt(c.ID, 10), true)().(profileLoadedMsg)
	if !ok {
		t.Fatal("profile should load")
	}
	m, _ = m.update(loaded)
	view := m.view()
	if !strings.Contains(view, "Photo:") || !strings.Contains(view, filepath.Base(c.ProfileImageURI)) {
		t.Fatalf("photo line missing from view:\n%s", view)
	}
}

func TestProfileReloadFollowsVault(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Sam", "", "")
	if err := s.SetContactPrivate(c.ID, true); err != nil {
		t.Fatal(err)
	}

	open := true
	m := newProfileModel(s, nil, nopLogger(), func() bool { return open }, testStyles())
	loaded, ok := loadProfile(s, strconv.FormatInt(c.ID, 10), true)().(profileLoadedMsg)
	if !ok {
		t.Fatal("profile should load")
	}
	m, _ = m.update(loaded)

	open = false
	msg, ok := m.reload()().(closeRouteMsg)
	if !ok || !errors.Is(msg.err, errVaultLocked) {
		t.Fatalf("reload with a locked vault should close, got %#v", msg)
	}
}

// ============================================================
// Log interaction
// ============================================================

func TestLogInteractionWithAttachments(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c := mustContact(t, s, "Ann", "", "")

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.png")
	os.WriteFile(a, []byte("notes"), 0o600)
	os.WriteFile(b, []byte("\x89PNG\r\n\x1a\n"), 0o600)

	it, err := logInteraction(s, files, *c, interactionFields{
		Type:        store.InteractionMeeting,
		Notes:       "coffee",
		Location:    " Cafe ",
		When:        "2026-01-02 10:00",
		Attachments: a + ", " + b,
	})
	if err != nil {
		t.Fatal(err)
	}
	if it.Location != "Cafe" {
		t.Fatalf("location = %q", it.Location)
	}
	if !it.Date.Equal(time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local)) {
		t.Fatalf("date = %v", it.Date)
	}

	media, err := s.ListInteractionMedia(it.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(media) != 2 {
		t.Fatalf("expected 2 media rows, got %d", len(media))
	}
	for _, md := range media {
		if md.ContactID != c.ID || md.InteractionID == nil || *md.InteractionID != it.ID {
			t.Fatalf("media not linked: %+v", md)
		}
		if !strings.HasPrefix(md.URI, files.Dir()) {
			t.Fatalf("media should live in app storage: %s", md.URI)
		}
	}
}

func TestLogInteractionValidation(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")

	if _, err := logInteraction(s, nil, *c, interactionFields{Type: store.InteractionNote, Notes: "  "}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := logInteraction(s, nil, *c, interactionFields{Type: store.InteractionNote, Notes: "x", When: "soon"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := s.ListInteractions(c.ID)
	if len(list) != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestLogInteractionMissingAttachment(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c := mustContact(t, s, "Ann", "", "")

	good := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(good, []byte("x"), 0o600)

	_, err := logInteraction(s, files, *c, interactionFields{
		Type:        store.InteractionNote,
		Notes:       "x",
		Attachments: good + "," + filepath.Join(t.TempDir(), "missing.txt"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	list, _ := s.ListInteractions(c.ID)
	if len(list) != 0 {
		t.Fatal("failed copy should not create the interaction")
	}
	left, _ := os.ReadDir(files.Dir())
	if len(left) != 0 {
		t.Fatalf("copied files should be cleaned up, found %d", len(left))
	}
}

func TestLogInteractionInsertFailureRemovesCopies(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	ghost := store.Contact{ID: 9999, FirstName: "Ghost"}

	_, err := logInteraction(s, files, ghost, interactionFields{
		Type:        store.InteractionNote,
		Notes:       "x",
		Attachments: writeFile(t, "a.txt", []byte("x")),
	})
	if err == nil {
		t.Fatal("expected error for a missing contact")
	}
	left, _ := os.ReadDir(files.Dir())
	if len(left) != 0 {
		t.Fatalf("copied files should be cleaned up, found %d", len(left))
	}
}

func TestLoggedStatus(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	c := mustContact(t, s, "Ann", "Lee", "")

	it, err := logInteraction(s, files, *c, interactionFields{
		Type:        store.InteractionMeeting,
		Notes:       "coffee",
		Attachments: writeFile(t, "a.txt", []byte("x")) + "," + writeFile(t, "b.png", pngHeader),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := loggedStatus(s, it, *c); got != "Logged meeting with Ann Lee (2 attachments)" {
		t.Fatalf("status = %q", got)
	}

	plain, err := logInteraction(s, files, *c, interactionFields{Type: store.InteractionCall, Notes: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if got := loggedStatus(s, plain, *c); got != "Logged call with Ann Lee" {
		t.Fatalf("status = %q", got)
	}
}

// ============================================================
// Reminders
// ============================================================

func TestAddReminderMirrorsToCalendar(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")
	cal := &fakeCalendar{}

	r, err := addReminder(s, cal, nopLogger(), reminderFields{Title: "Call Ann", When: "2026-06-01 09:00", ContactID: c.ID, Mirror: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.CalendarEventID != "evt-1" || cal.calls != 1 {
		t.Fatalf("event not recorded: %+v", r)
	}
	if r.ContactID == nil || *r.ContactID != c.ID {
		t.Fatal("reminder should be linked to the contact")
	}
}

func TestAddReminderCalendarFailureStillSaves(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")
	cal := &fakeCalendar{err: errors.New("denied")}

	r, err := addReminder(s, cal, nopLogger(), reminderFields{Title: "Call Ann", When: "2026-06-01", ContactID: c.ID, Mirror: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.CalendarEventID != "" {
		t.Fatal("event id should be empty")
	}
	list, _ := s.ListReminders()
	if len(list) != 1 {
		t.Fatal("reminder should be saved")
	}
}

func TestAddReminderNoMirror(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")
	cal := &fakeCalendar{}

	if _, err := addReminder(s, cal, nopLogger(), reminderFields{Title: "x", When: "2026-06-01", ContactID: c.ID}); err != nil {
		t.Fatal(err)
	}
	if cal.calls != 0 {
		t.Fatal("calendar should not be touched")
	}
}

func TestAddReminderValidation(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")

	cases := []reminderFields{
		{Title: " ", When: "2026-06-01", ContactID: c.ID},
		{Title: "x", When: "2026-06-01"},
		{Title: "x", When: "", ContactID: c.ID},
		{Title: "x", When: "june", ContactID: c.ID},
	}
	for i, f := range cases {
		if _, err := addReminder(s, nil, nopLogger(), f); !errors.Is(err, store.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
	if _, err := addReminder(s, nil, nopLogger(), reminderFields{Title: "x", When: "2026-06-01", ContactID: 9999}); !errors.Is(err, errContactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReminderChoicesHidesVault(t *testing.T) {
	s := newTestStore(t)
	mustContact(t, s, "Ann", "", "")
	p1 := mustContact(t, s, "Sam", "", "")
	p2 := mustContact(t, s, "Zed", "", "")
	s.SetContactPrivate(p1.ID, true)
	s.SetContactPrivate(p2.ID, true)

	list, err := reminderChoices(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected only public contacts, got %d", len(list))
	}

	list, _ = reminderChoices(s, p1.ID)
	if len(list) != 2 || list[0].ID != p1.ID {
		t.Fatalf("preset private contact should lead, got %+v", list)
	}
}

func TestRemindersModelToggle(t *testing.T) {
	s := newTestStore(t)
	c := mustContact(t, s, "Ann", "", "")
	id := c.ID
	r, err := s.CreateReminder(store.ReminderInput{ContactID: &id, Title: "Call", Date: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}

	m := newRemindersModel(s, testStyles())
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())

	if msg := m.setCompleted(r.ID, true)(); msg != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	m, _ = m.update(m.refresh()())
	if !m.entries[0].Completed {
		t.Fatal("completion should persist")
	}
	if !strings.Contains(m.view(), "✓") {
		t.Fatal("completed reminder should be ticked")
	}
}

func TestRemindersModelSections(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)
	for _, d := range []time.Time{now.AddDate(0, 0, -2), now.Add(time.Hour), now.AddDate(0, 0, 1), now.AddDate(0, 0, 5)} {
		if _, err := s.CreateReminder(store.ReminderInput{Title: "r", Date: d}); err != nil {
			t.Fatal(err)
		}
	}

	m := newRemindersModel(s, testStyles())
	m.now = func() time.Time { return now }
	m.setSize(120, 40)
	m, _ = m.update(m.refresh()())

	out := m.view()
	for _, b := range agenda.Buckets {
		if !strings.Contains(out, b.String()) {
			t.Fatalf("view missing section %s", b)
		}
	}
}

// ============================================================
// Vault
// ============================================================

func TestVaultModelSetupAndUnlock(t *testing.T) {
	s := newTestStore(t)
	g := newTestGate(t, s)
	m := newVaultModel(s, g, testStyles())
	m.setSize(120, 40)

	if !m.capturesKey(runeKey('4')) {
		t.Fatal("locked vault should capture digits")
	}
	if m.capturesKey(runeKey('q')) {
		t.Fatal("locked vault should not capture letters")
	}

	m = typeDigits(t, m, "1357")
	if g.Mode() != vault.ModeSetupConfirm {
		t.Fatalf("mode = %s", g.Mode())
	}
	m = typeDigits(t, m, "2468")
	if !strings.Contains(m.message, "did not match") {
		t.Fatalf("message = %q", m.message)
	}
	m = typeDigits(t, m, "1357")
	m = typeDigits(t, m, "1357")
	if !m.unlocked() {
		t.Fatal("vault should be open")
	}
	if m.capturesKey(runeKey('4')) {
		t.Fatal("open vault should let tabs through")
	}
}

func TestVaultModelWrongPIN(t *testing.T) {
	s := newTestStore(t)
	pins := vault.NewPINStore(vault.NewMemorySecretStore())
	pins.SetPIN("1111")
	g, _ := vault.NewGate(pins, nil, s)
	m := newVaultModel(s, g, testStyles())

	m = typeDigits(t, m, "2222")
	if m.unlocked() || m.message != "Wrong PIN" {
		t.Fatalf("unexpected state: %q", m.message)
	}
	m, _ = m.update(runeKey('1'))
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyBackspace})
	if g.Entered() != 0 {
		t.Fatal("backspace should remove the digit")
	}
}

func TestVaultModelAutoLock(t *testing.T) {
	s := newTestStore(t)
	g := newTestGate(t, s)
	m := newVaultModel(s, g, testStyles())
	m = typeDigits(t, m, "1234")
	m = typeDigits(t, m, "1234")
	if !m.unlocked() {
		t.Fatal("vault should be open")
	}

	m, _ = m.update(autoLockMsg{timeout: time.Minute})
	m, _ = m.update(tickMsg(time.Now().Add(30 * time.Second)))
	if !m.unlocked() {
		t.Fatal("should stay open before the timeout")
	}
	m, _ = m.update(tickMsg(time.Now().Add(2 * time.Minute)))
	if m.unlocked() {
		t.Fatal("should lock after inactivity")
	}
	if g.Mode() != vault.ModeAuth {
		t.Fatalf("mode = %s", g.Mode())
	}
}

func TestVaultModelManualLock(t *testing.T) {
	s := newTestStore(t)
	g := newTestGate(t, s)
	m := newVaultModel(s, g, testStyles())
	m = typeDigits(t, m, "1234")
	m = typeDigits(t, m, "1234")

	m, _ = m.update(runeKey('L'))
	if m.unlocked() {
		t.Fatal("L should lock the vault")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsRefresh(t *testing.T) {
	s := newTestStore(t)
	themes, _ := theme.NewProvider(s, func() bool { return false })
	m := newSettingsModel(s, themes, newTestGate(t, s), calllog.New(nil, s), testStyles())
	m.setSize(120, 40)

	m, _ = m.update(m.refresh()())
	if !m.bioEnabled {
		t.Fatal("biometric should default on")
	}
	if !strings.Contains(m.view(), "Biometric unlock") {
		t.Fatal("view should list items")
	}
}

func TestSettingsCycleTheme(t *testing.T) {
	s := newTestStore(t)
	themes, _ := theme.NewProvider(s, func() bool { return false })
	m := newSettingsModel(s, themes, newTestGate(t, s), calllog.New(nil, s), testStyles())

	before := themes.Current().Mode
	_, cmd := m.activate(itemTheme)
	if msg, ok := cmd().(statusMsg); !ok || msg.isError {
		t.Fatalf("unexpected %#v", msg)
	}
	after := themes.Current().Mode
	if after == before {
		t.Fatal("theme should advance")
	}
	stored, _ := s.ThemeMode()
	if stored != string(after) {
		t.Fatalf("stored mode = %q, want %q", stored, after)
	}
}

func TestSyncCallLogUnavailable(t *testing.T) {
	s := newTestStore(t)
	msg, ok := syncCallLog(calllog.New(nil, s))().(statusMsg)
	if !ok || !msg.isError || !strings.Contains(msg.text, "not available") {
		t.Fatalf("unexpected %#v", msg)
	}
}

func TestSettingsBeginChange(t *testing.T) {
	s := newTestStore(t)
	pins := vault.NewPINStore(vault.NewMemorySecretStore())
	pins.SetPIN("1234")
	g, _ := vault.NewGate(pins, nil, s)
	themes, _ := theme.NewProvider(s, func() bool { return false })
	m := newSettingsModel(s, themes, g, calllog.New(nil, s), testStyles())

	msg, ok := m.beginChange("0000")().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("wrong pin should be reported, got %#v", msg)
	}
	if g.Mode() != vault.ModeAuth {
		t.Fatal("wrong pin must change nothing")
	}

	sw, ok := m.beginChange("1234")().(switchViewMsg)
	if !ok || sw.view != viewVault {
		t.Fatalf("expected switch to vault, got %#v", sw)
	}
	if g.Mode() != vault.ModeSetupCreate {
		t.Fatalf("mode = %s", g.Mode())
	}
}

func TestSettingsSaveAutoLock(t *testing.T) {
	s := newTestStore(t)
	themes, _ := theme.NewProvider(s, func() bool { return false })
	m := newSettingsModel(s, themes, newTestGate(t, s), calllog.New(nil, s), testStyles())

	if msg, ok := m.saveAutoLock("5")().(statusMsg); !ok || msg.isError {
		t.Fatalf("unexpected %#v", msg)
	}
	secs, _ := s.VaultAutoLock()
	if secs != 300 {
		t.Fatalf("auto-lock = %d", secs)
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.activeView != viewContacts {
		t.Fatalf("expected contacts view, got %d", app.activeView)
	}
	if app.route() != routeNone {
		t.Fatal("no modal screen at start")
	}
	if app.Init() == nil {
		t.Fatal("Init should return a command")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)
	app = resize(app, 120, 40)

	views := []viewState{viewContacts, viewTimeline, viewReminders, viewVault, viewSettings}
	for _, v := range views {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	app = resize(app, 120, 40)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppRenderFooter(t *testing.T) {
	app, _ := newTestApp(t)
	app = resize(app, 120, 40)
	app.status = "Saved Ann"

	footer := app.renderFooter()
	if !strings.Contains(footer, "Saved Ann") || !strings.Contains(footer, "vault locked") {
		t.Fatalf("footer = %q", footer)
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t)
	if app.View() != "Loading..." {
		t.Fatal("expected loading before the first resize")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(errStatus("Load contacts", errors.New("boom")))
	a := model.(App)
	if !a.statusErr || !strings.Contains(a.status, "boom") {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAppSwitchTabs(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(runeKey('3'))
	if model.(App).activeView != viewReminders {
		t.Fatal("3 should open reminders")
	}
	model, _ = model.(App).Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.(App).activeView != viewVault {
		t.Fatal("tab should advance")
	}
	// Digits belong to the PIN pad now.
	model, _ = model.(App).Update(runeKey('1'))
	a := model.(App)
	if a.activeView != viewVault || a.gate.Entered() != 1 {
		t.Fatal("locked vault should take digits")
	}
}

func TestAppRouteStack(t *testing.T) {
	app, s := newTestApp(t)
	app = resize(app, 120, 40)
	c := mustContact(t, s, "Ann", "", "")
	id := strconv.FormatInt(c.ID, 10)

	model, cmd := app.Update(openProfileMsg{id: id})
	a := model.(App)
	if a.route() != routeProfile {
		t.Fatal("profile should be open")
	}
	model, _ = a.Update(cmd())
	a = model.(App)
	if a.profile.data.contact == nil || a.profile.data.contact.ID != c.ID {
		t.Fatal("profile should be loaded")
	}
	if !strings.Contains(a.View(), "Ann") {
		t.Fatal("profile should render")
	}

	model, _ = a.Update(openLogMsg{contact: *c})
	a = model.(App)
	if a.route() != routeLogInteraction {
		t.Fatal("log form should be on top")
	}

	model, _ = a.Update(closeRouteMsg{status: "Logged"})
	a = model.(App)
	if a.route() != routeProfile || a.status != "Logged" {
		t.Fatal("closing the form should return to the profile")
	}

	model, _ = a.Update(closeRouteMsg{status: "Load profile", err: errContactNotFound})
	a = model.(App)
	if a.route() != routeNone || !a.statusErr {
		t.Fatal("closing the profile should return to the list with the error")
	}
}

func TestAppBadProfileID(t *testing.T) {
	app, _ := newTestApp(t)
	model, cmd := app.Update(openProfileMsg{id: "nope"})
	model, _ = model.(App).Update(cmd())
	a := model.(App)
	if a.route() != routeNone || !a.statusErr {
		t.Fatal("invalid id should close with an error")
	}
}

func TestAppThemeChange(t *testing.T) {
	app, _ := newTestApp(t)
	light := theme.Resolve(theme.ModeLight, true)
	model, cmd := app.Update(themeChangedMsg{theme: light})
	a := model.(App)
	if a.st.palette != light.Palette {
		t.Fatal("styles should follow the palette")
	}
	if a.contacts.st.palette != light.Palette || a.vault.list.st.palette != light.Palette {
		t.Fatal("views should get the new styles")
	}
	if cmd == nil {
		t.Fatal("app should keep listening for theme changes")
	}
}

func TestAppThemeProviderPublishes(t *testing.T) {
	app, _ := newTestApp(t)
	if _, err := app.themes.Set(theme.ModeLight); err != nil {
		t.Fatal(err)
	}
	msg, ok := waitForTheme(app.themeCh)().(themeChangedMsg)
	if !ok || msg.theme.Mode != theme.ModeLight {
		t.Fatalf("unexpected %#v", msg)
	}
}

func TestAppExport(t *testing.T) {
	app, s := newTestApp(t)
	mustContact(t, s, "Ann", "Lee", "Friend")

	for _, f := range []exportFormat{exportBackup, exportContactsCSV} {
		msg, ok := app.doExport(f)().(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: export failed", f)
		}
		if _, err := os.Stat(msg.path); err != nil {
			t.Fatalf("format %d: %v", f, err)
		}
	}
}

func TestAppExportCSVSkipsVaultWhileLocked(t *testing.T) {
	app, s := newTestApp(t)
	mustContact(t, s, "Ann", "Lee", "Friend")
	sam := mustContact(t, s, "Sam", "Hidden", "")
	if err := s.SetContactPrivate(sam.ID, true); err != nil {
		t.Fatal(err)
	}

	msg, ok := app.doExport(exportContactsCSV)().(exportDoneMsg)
	if !ok {
		t.Fatal("export failed")
	}
	if msg.skipped != 1 {
		t.Fatalf("skipped = %d", msg.skipped)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Hidden") || !strings.Contains(string(data), "Lee") {
		t.Fatalf("unexpected CSV:\n%s", data)
	}

	model, _ := app.Update(msg)
	if a := model.(App); !strings.Contains(a.status, "1 vault contacts left out") {
		t.Fatalf("status = %q", a.status)
	}

	app.vault = typeDigits(t, app.vault, "1234")
	app.vault = typeDigits(t, app.vault, "1234")
	msg, ok = app.doExport(exportContactsCSV)().(exportDoneMsg)
	if !ok || msg.skipped != 0 {
		t.Fatalf("open vault should export everything, got %#v", msg)
	}
	data, _ = os.ReadFile(msg.path)
	if !strings.Contains(string(data), "Hidden") {
		t.Fatal("private contact missing from unlocked export")
	}
}

// openPrivateProfile unlocks the vault and opens a private contact's profile.
func openPrivateProfile(t *testing.T) (App, *store.Contact) {
	t.Helper()
	app, s := newTestApp(t)
	app = resize(app, 120, 40)
	app.vault = typeDigits(t, app.vault, "1234")
	app.vault = typeDigits(t, app.vault, "1234")
	if !app.gate.Unlocked() {
		t.Fatal("vault should be open")
	}

	c := mustContact(t, s, "Sam", "Hidden", "")
	if err := s.SetContactPrivate(c.ID, true); err != nil {
		t.Fatal(err)
	}
	c, _ = s.GetContact(c.ID)

	model, cmd := app.Update(openProfileMsg{id: strconv.FormatInt(c.ID, 10)})
	model, _ = model.(App).Update(cmd())
	a := model.(App)
	if a.profile.data.contact == nil || !a.profile.data.contact.IsPrivate {
		t.Fatal("private profile should be loaded")
	}
	return a, c
}

func TestAppTypingInFormKeepsVaultOpen(t *testing.T) {
	a, c := openPrivateProfile(t)

	model, _ := a.Update(openLogMsg{contact: *c})
	a = model.(App)
	a.vault.idle = idleLock{lastActivity: time.Now().Add(-2 * time.Minute), timeout: time.Minute}

	for _, r := range "hello" {
		model, _ = a.Update(runeKey(r))
		a = model.(App)
	}
	model, _ = a.Update(tickMsg(time.Now()))
	a = model.(App)
	if !a.gate.Unlocked() {
		t.Fatal("typing in a form should count as vault activity")
	}
	if a.route() != routeLogInteraction {
		t.Fatal("log form should stay open")
	}
}

func TestAppLockClosesPrivateRoutes(t *testing.T) {
	a, c := openPrivateProfile(t)
	model, _ := a.Update(openLogMsg{contact: *c})
	a = model.(App)
	a.activeView = viewReminders

	if err := a.gate.Lock(); err != nil {
		t.Fatal(err)
	}
	model, _ = a.Update(vaultLockedMsg{})
	a = model.(App)
	if a.route() != routeNone {
		t.Fatalf("locking should close private screens, route = %v", a.route())
	}
	if strings.Contains(a.View(), "Hidden") {
		t.Fatal("private contact still visible after lock")
	}
}

func TestAppLockKeepsPublicRoutes(t *testing.T) {
	app, s := newTestApp(t)
	app = resize(app, 120, 40)
	c := mustContact(t, s, "Ann", "Lee", "")

	model, cmd := app.Update(openProfileMsg{id: strconv.FormatInt(c.ID, 10)})
	model, _ = model.(App).Update(cmd())
	model, _ = model.(App).Update(vaultLockedMsg{})
	if model.(App).route() != routeProfile {
		t.Fatal("public profile should stay open")
	}
}

// ============================================================
// End to end
// ============================================================

func TestScenarioAnnLee(t *testing.T) {
	s := newTestStore(t)
	files := attach.New(t.TempDir())
	cal := &fakeCalendar{}

	ann, err := saveContact(s, files, 0, contactFields{FirstName: "Ann", LastName: "Lee", Phone: "555-0100", Relation: "Friend"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := logInteraction(s, files, *ann, interactionFields{Type: store.InteractionCall, Notes: "Caught up about the trip"}); err != nil {
		t.Fatal(err)
	}
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02") + " 10:00"
	if _, err := addReminder(s, cal, nopLogger(), reminderFields{Title: "Send photos", When: tomorrow, ContactID: ann.ID, Mirror: true}); err != nil {
		t.Fatal(err)
	}

	contacts, _ := s.ListContacts(false)
	if got := search.Contacts(contacts, "lee", "Friend"); len(got) != 1 {
		t.Fatalf("search should find Ann, got %d", len(got))
	}
	timeline, _ := s.ListTimeline()
	if got := search.Timeline(timeline, "trip", string(store.InteractionCall)); len(got) != 1 || got[0].ContactName() != "Ann Lee" {
		t.Fatalf("timeline search: %+v", got)
	}
	reminders, _ := s.ListReminders()
	sections := agenda.Group(reminders, time.Now())
	if len(sections) != 1 || sections[0].Bucket != agenda.Tomorrow {
		t.Fatalf("expected one Tomorrow section, got %+v", sections)
	}

	p, err := fetchProfile(s, ann.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.interactions) != 1 || len(p.reminders) != 1 {
		t.Fatalf("profile: %+v", p)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should not be empty")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: just verify they render)
// ============================================================

func TestStylesRender(t *testing.T) {
	for _, mode := range theme.Modes {
		st := newStyles(theme.Resolve(mode, true).Palette)
		renders := []string{
			st.title.Render("x"),
			st.panel.Render("x"),
			st.activeTab.Render("x"),
			st.pinDigit.Render("●"),
			st.selectedItem.Render("x"),
		}
		for _, r := range renders {
			if r == "" {
				t.Fatalf("%s: empty render", mode)
			}
		}
		for _, typ := range store.InteractionTypes {
			if st.interactionColor(string(typ)) == "" {
				t.Fatalf("%s: no color for %s", mode, typ)
			}
		}
	}
}
