package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelie-moura/terno-api/utils"
)

// newPhotoFileHeader builds a multipart.FileHeader the way gin hands one to
// the upload controller
func newPhotoFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	require.NotEmpty(t, form.File["photo"])
	return form.File["photo"][0]
}

func TestS3PhotoService_UploadPhoto(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoSvc := &S3PhotoService{s3Service: mockS3}

	header := newPhotoFileHeader(t, "sleeve_finished.jpg", []byte("jpeg bytes"))

	key, err := photoSvc.UploadPhoto(header)
	require.NoError(t, err)
	assert.Equal(t, "photos/mock_sleeve_finished.jpg", key)
	assert.True(t, mockS3.FileExists(key))
}

func TestS3PhotoService_UploadPhotoRejectsBadFormat(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoSvc := &S3PhotoService{s3Service: mockS3}

	header := newPhotoFileHeader(t, "measurements.pdf", []byte("%PDF-1.4"))

	_, err := photoSvc.UploadPhoto(header)
	require.Error(t, err)

	var uploadErr *utils.FileUploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	assert.False(t, mockS3.FileExists("photos/mock_measurements.pdf"))
}

func TestS3PhotoService_GetPhotoURL(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoSvc := &S3PhotoService{s3Service: mockS3}

	header := newPhotoFileHeader(t, "lining.png", []byte("png bytes"))
	key, err := photoSvc.UploadPhoto(header)
	require.NoError(t, err)

	url, err := photoSvc.GetPhotoURL(key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	// Empty key means no photo attached, not an error
	url, err = photoSvc.GetPhotoURL("")
	require.NoError(t, err)
	assert.Empty(t, url)

	_, err = photoSvc.GetPhotoURL("photos/never-uploaded.jpg")
	assert.Error(t, err)
}

func TestS3PhotoService_DeletePhoto(t *testing.T) {
	mockS3 := NewMockS3Service()
	photoSvc := &S3PhotoService{s3Service: mockS3}

	header := newPhotoFileHeader(t, "hem.jpg", []byte("jpeg bytes"))
	key, err := photoSvc.UploadPhoto(header)
	require.NoError(t, err)
	require.True(t, mockS3.FileExists(key))

	require.NoError(t, photoSvc.DeletePhoto(key))
	assert.False(t, mockS3.FileExists(key))

	// Deleting an empty key is a no-op
	assert.NoError(t, photoSvc.DeletePhoto(""))
}

func TestMockS3Service_Clear(t *testing.T) {
	mockS3 := NewMockS3Service()

	header := newPhotoFileHeader(t, "pocket.jpg", []byte("jpeg bytes"))
	key, err := mockS3.UploadFile(header)
	require.NoError(t, err)
	require.True(t, mockS3.FileExists(key))

	mockS3.Clear()
	assert.False(t, mockS3.FileExists(key))
}
