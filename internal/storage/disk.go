// Package storage хранит загруженные изображения доказательств перевода.
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ProofStore абстракция хранилища изображений. Возвращаемый ref это непрозрачная ссылка,
// которая сохраняется в платеже. Remove удаляет файл, который так и не был прикреплен.
type ProofStore interface {
	Save(ctx context.Context, contentType string, r io.Reader) (ref string, err error)
	Remove(ctx context.Context, ref string) error
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DiskStore дисковая реализация ProofStore. Имена файлов генерируются как uuid,
// чтобы ссылка не раскрывала ничего о загрузившем.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "creating proof dir %s", dir)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "saving proof")
	}

	ext, ok := extByContentType[contentType]
	if !ok {
		return "", errors.Errorf("unsupported content type %s", contentType)
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, createErr := os.Create(path) //nolint:gosec
	if createErr != nil {
		return "", errors.Wrapf(createErr, "creating proof file %s", name)
	}

	if _, copyErr := io.Copy(f, r); copyErr != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Wrapf(copyErr, "writing proof file %s", name)
	}
	if closeErr := f.Close(); closeErr != nil {
		return "", errors.Wrapf(closeErr, "closing proof file %s", name)
	}
	return name, nil
}

// Remove удаляет изображение по ссылке. Отсутствие файла не считается ошибкой.
// Base отсекает компоненты пути: ссылка не может указать за пределы каталога.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	path := filepath.Join(s.dir, filepath.Base(ref))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing proof file %s", ref)
	}
	return nil
}
