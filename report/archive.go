package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"clockzy.com/clockzy/utils"
)

// Storage is where exported workbooks are archived.
type Storage interface {
	WriteFile(ctx context.Context, key, contentType string, body io.Reader) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

// Archive keeps a copy of every exported workbook per user.
type Archive struct {
	storage Storage
}

func NewArchive(storage Storage) *Archive {
	return &Archive{storage: storage}
}

// Key is history/<user>/<yyyymmdd-hhmmss>-<range>.xlsx in UTC.
func Key(userID, rangeName string, at time.Time) string {
	return fmt.Sprintf("%s%s-%s.xlsx", prefix(userID), at.UTC().Format("20060102-150405"), rangeName)
}

func prefix(userID string) string {
	return fmt.Sprintf("history/%s/", userID)
}

func (a *Archive) Save(ctx context.Context, userID, rangeName string, at time.Time, workbook []byte) (string, error) {
	key := Key(userID, rangeName, at)
	if err := a.storage.WriteFile(ctx, key, ContentType, bytes.NewReader(workbook)); err != nil {
		return "", err
	}
	return key, nil
}

// List returns the archived workbooks of userID. Other objects under the
// user prefix are skipped.
func (a *Archive) List(ctx context.Context, userID string) ([]string, error) {
	keys, err := a.storage.ListFiles(ctx, prefix(userID))
	if err != nil {
		return nil, err
	}
	return utils.Filter(keys, func(key string) bool {
		return strings.HasSuffix(key, ".xlsx")
	}), nil
}
