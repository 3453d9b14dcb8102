// Package attach copies user-chosen files into bondvault's own storage so
// media rows never point at paths the user may later move or delete.
package attach

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sadopc/bondvault/internal/store"
)

// Attachment describes a file copied into the attachments directory.
type Attachment struct {
	Path     string
	FileName string
	MimeType string
	Type     store.MediaType
}

// Input converts a to a media row for the given contact and interaction.
func (a Attachment) Input(contactID int64, interactionID *int64, private bool) store.MediaInput {
	return store.MediaInput{
		ContactID:     contactID,
		InteractionID: interactionID,
		Type:          a.Type,
		URI:           a.Path,
		MimeType:      a.MimeType,
		FileName:      a.FileName,
		IsPrivate:     private,
	}
}

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Copy duplicates src into the attachments directory under a fresh uuid name
// that keeps the original extension.
func (s *Store) Copy(src string) (*Attachment, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment %s is a directory", src)
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(in, head)
	head = head[:n]
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind attachment: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(src))
	dst := filepath.Join(s.dir, uuid.NewString()+ext)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("create attachment copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return nil, fmt.Errorf("copy attachment: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("close attachment copy: %w", err)
	}

	mt := DetectMIME(src, head)
	return &Attachment{
		Path:     dst,
		FileName: filepath.Base(src),
		MimeType: mt,
		Type:     Classify(mt),
	}, nil
}

// ErrNotImage is returned by CopyImage for files that are not pictures.
var ErrNotImage = errors.New("file is not an image")

// CopyImage copies src like Copy but keeps it only when it is an image.
func (s *Store) CopyImage(src string) (*Attachment, error) {
	a, err := s.Copy(src)
	if err != nil {
		return nil, err
	}
	if a.Type != store.MediaImage {
		_ = s.Remove(a.Path)
		return nil, fmt.Errorf("%s: %w", a.FileName, ErrNotImage)
	}
	return a, nil
}

// IsImage reports whether the file at path looks like a picture, using the
// same detection as Copy.
func IsImage(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	return Classify(DetectMIME(path, head[:n])) == store.MediaImage, nil
}

// Remove deletes a copied attachment. Paths outside the store are refused.
func (s *Store) Remove(path string) error {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("%s is not inside %s", path, s.dir)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DetectMIME uses the file extension first and sniffs head otherwise.
func DetectMIME(name string, head []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
		return t
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(head))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

// Classify maps a MIME type onto a media type. Anything that is not an
// image, video or audio is a document.
func Classify(mimeType string) store.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return store.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return store.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return store.MediaAudio
	}
	return store.MediaDocument
}
