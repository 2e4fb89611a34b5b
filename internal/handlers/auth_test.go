package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/YuriiKoshliak/contacts-api/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestRegisterEndpoint() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "testuser",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(suite.T(), "User successfully created. Check your email for confirmation.", body["detail"])

	user, ok := body["user"].(map[string]interface{})
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "alice@example.com", user["email"])
	assert.Equal(suite.T(), false, user["verified"])
	assert.NotContains(suite.T(), user, "password_hash")

	// Confirmation email goes out in the background
	suite.waitFor(func() bool {
		return suite.emailSender.verificationCount() > 0
	}, "verification email was never sent")
}

func (suite *HandlersTestSuite) TestRegisterEndpointDuplicate() {
	suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "othername",
		"email":    "alice@example.com",
		"password": "password456",
	}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "account already exists", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestRegisterEndpointValidation() {
	// Short username, short password
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "abc",
		"email":    "alice@example.com",
		"password": "short",
	}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestLoginEndpointUnverified() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "testuser",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	suite.waitFor(func() bool {
		return suite.emailSender.verificationCount() > 0
	}, "verification email was never sent")

	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "email not confirmed", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestLoginEndpointWrongPassword() {
	suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "invalid password", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestLoginEndpointUnknownEmail() {
	w := suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "invalid email", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestRefreshEndpoint() {
	suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var pair auth.TokenPair
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &pair))

	w = suite.request(http.MethodGet, "/api/v1/auth/refresh", nil, pair.RefreshToken)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var rotated auth.TokenPair
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.NotEmpty(suite.T(), rotated.AccessToken)
	assert.NotEqual(suite.T(), pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token no longer works
	w = suite.request(http.MethodGet, "/api/v1/auth/refresh", nil, pair.RefreshToken)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "invalid refresh token", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestRefreshEndpointRejectsAccessToken() {
	_, accessToken := suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodGet, "/api/v1/auth/refresh", nil, accessToken)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "invalid scope for token", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestRefreshEndpointNoToken() {
	w := suite.request(http.MethodGet, "/api/v1/auth/refresh", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestVerifyEmailEndpoint() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "testuser",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	suite.waitFor(func() bool {
		return suite.emailSender.verificationCount() > 0
	}, "verification email was never sent")

	suite.emailSender.mu.Lock()
	token := suite.emailSender.verifications[0].Token
	suite.emailSender.mu.Unlock()

	w = suite.request(http.MethodGet, "/api/v1/auth/verify/"+token, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "Email confirmed", suite.decode(w)["message"])

	// Login now succeeds
	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// A second visit is idempotent
	w = suite.request(http.MethodGet, "/api/v1/auth/verify/"+token, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Your email is already confirmed", suite.decode(w)["message"])
}

func (suite *HandlersTestSuite) TestVerifyEmailEndpointBadToken() {
	w := suite.request(http.MethodGet, "/api/v1/auth/verify/bogus-token", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "verification error", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestResendVerificationEndpoint() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "testuser",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	suite.waitFor(func() bool {
		return suite.emailSender.verificationCount() > 0
	}, "verification email was never sent")

	w = suite.request(http.MethodPost, "/api/v1/auth/resend-verification", gin.H{
		"email": "alice@example.com",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Check your email for confirmation.", suite.decode(w)["message"])

	suite.waitFor(func() bool {
		return suite.emailSender.verificationCount() >= 2
	}, "resent verification email was never sent")
}

func (suite *HandlersTestSuite) TestResendVerificationEndpointUnknownEmail() {
	// Same neutral response whether or not the account exists
	w := suite.request(http.MethodPost, "/api/v1/auth/resend-verification", gin.H{
		"email": "nobody@example.com",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Check your email for confirmation.", suite.decode(w)["message"])
	assert.Equal(suite.T(), 0, suite.emailSender.verificationCount())
}

func (suite *HandlersTestSuite) TestResendVerificationEndpointAlreadyVerified() {
	suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/auth/resend-verification", gin.H{
		"email": "alice@example.com",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Your email is already confirmed", suite.decode(w)["message"])
}

func (suite *HandlersTestSuite) TestPasswordResetEndpoints() {
	suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset", gin.H{
		"email": "alice@example.com",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "If the account exists, a reset link has been sent.", suite.decode(w)["message"])

	suite.waitFor(func() bool {
		_, ok := suite.emailSender.lastReset()
		return ok
	}, "reset email was never sent")

	reset, _ := suite.emailSender.lastReset()
	assert.Equal(suite.T(), "alice@example.com", reset.To)

	w = suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", gin.H{
		"token":    reset.Token,
		"password": "new-password-123",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "Password updated", suite.decode(w)["message"])

	// New password works, old one does not
	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "new-password-123",
	}, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	// The token is single-use
	w = suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", gin.H{
		"token":    reset.Token,
		"password": "another-password-1",
	}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "reset token already used", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestPasswordResetEndpointUnknownEmail() {
	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset", gin.H{
		"email": "nobody@example.com",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "If the account exists, a reset link has been sent.", suite.decode(w)["message"])
}

func (suite *HandlersTestSuite) TestConfirmPasswordResetEndpointBadToken() {
	w := suite.request(http.MethodPost, "/api/v1/auth/password-reset/confirm", gin.H{
		"token":    "no-such-token",
		"password": "new-password-123",
	}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "invalid reset token", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestAuthMiddlewareRejectsGarbage() {
	w := suite.request(http.MethodGet, "/api/v1/users/me", nil, "garbage-token")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "could not validate credentials", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestMeEndpoint() {
	userID, accessToken := suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodGet, "/api/v1/users/me", nil, accessToken)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(suite.T(), userID, body["id"])
	assert.Equal(suite.T(), "alice@example.com", body["email"])
	assert.NotContains(suite.T(), body, "password_hash")
}

func (suite *HandlersTestSuite) TestAvatarEndpointNotConfigured() {
	// The test router has no uploader wired in
	_, accessToken := suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPatch, "/api/v1/users/me/avatar", nil, accessToken)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}
