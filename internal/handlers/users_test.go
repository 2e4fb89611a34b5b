package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/YuriiKoshliak/contacts-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAvatarUploader serves avatar handler tests without touching S3.
type fakeAvatarUploader struct {
	result *storage.UploadResult
	err    error
}

func (f *fakeAvatarUploader) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// avatarRouter mirrors the avatar route with an uploader wired in.
func (suite *HandlersTestSuite) avatarRouter(uploader storage.AvatarUploader) *gin.Engine {
	authHandlers := NewAuthHandlers(suite.authService, suite.emailSender)
	userHandlers := NewUserHandlers(suite.users, uploader)

	r := gin.New()
	users := r.Group("/api/v1/users")
	users.Use(authHandlers.Middleware())
	users.PATCH("/me/avatar", userHandlers.UpdateAvatar)
	return r
}

func (suite *HandlersTestSuite) uploadAvatar(router *gin.Engine, token string, withFile bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withFile {
		part, err := mw.CreateFormFile("avatar", "avatar.png")
		require.NoError(suite.T(), err)
		_, err = part.Write([]byte("not-really-a-png"))
		require.NoError(suite.T(), err)
	}
	require.NoError(suite.T(), mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestUpdateAvatarEndpoint() {
	userID, token := suite.registerVerifiedUser("alice@example.com", "password123")

	router := suite.avatarRouter(&fakeAvatarUploader{
		result: &storage.UploadResult{URL: "https://cdn.example.com/avatars/alice.png"},
	})

	w := suite.uploadAvatar(router, token, true)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(suite.T(), "https://cdn.example.com/avatars/alice.png", body["avatar_url"])

	// The URL is persisted, not just echoed
	user, err := suite.users.GetUser(context.Background(), userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://cdn.example.com/avatars/alice.png", user.AvatarURL)
}

func (suite *HandlersTestSuite) TestUpdateAvatarEndpointMissingFile() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	router := suite.avatarRouter(&fakeAvatarUploader{})

	w := suite.uploadAvatar(router, token, false)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateAvatarEndpointUploadFailure() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	router := suite.avatarRouter(&fakeAvatarUploader{err: errors.New("bucket unavailable")})

	w := suite.uploadAvatar(router, token, true)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "failed to upload avatar", suite.errorMessage(w))
}
