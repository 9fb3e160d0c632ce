package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where stored objects are served from.
const URLPrefix = "/uploads/"

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidKey      = errors.New("invalid object key")
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Store keeps uploaded files outside the database.
type Store interface {
	Put(ctx context.Context, folder string, r io.Reader) (Object, error)
	Delete(ctx context.Context, key string) error
}

// LocalStore writes objects below a directory that the HTTP server exposes
// under URLPrefix.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put sniffs the content type from the first bytes and only accepts images.
func (s *LocalStore) Put(ctx context.Context, folder string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Object{}, err
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExt[contentType]
	if !ok {
		return Object{}, ErrUnsupportedType
	}

	folder = strings.Trim(path.Clean("/"+folder), "/")
	key := path.Join(folder, uuid.NewString()+ext)
	dest, err := s.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Object{}, err
	}

	f, err := os.Create(dest)
	if err != nil {
		return Object{}, err
	}
	n, err := io.Copy(f, br)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return Object{}, fmt.Errorf("write object: %w", err)
	}

	return Object{Key: key, URL: s.baseURL + URLPrefix + key, ContentType: contentType, Size: n}, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	dest, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// KeyFromURL recovers the object key from a URL produced by Put. It returns
// "" for URLs that point elsewhere.
func KeyFromURL(u string) string {
	i := strings.Index(u, URLPrefix)
	if i < 0 {
		return ""
	}
	return u[i+len(URLPrefix):]
}
