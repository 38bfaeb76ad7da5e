package testutils

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/internship-portal/internal/domain"
)

// SamplePDF is a minimal document that content sniffing recognises as a PDF.
var SamplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// SeedUser inserts a user with the given role and returns it.
func SeedUser(t *testing.T, store *MemoryStore, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: domain.NormalizeEmail(email), PasswordHash: "x", Role: role}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

// FileHeader builds a multipart file header holding content under filename.
func FileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	files := form.File[field]
	require.Len(t, files, 1)
	return files[0]
}
