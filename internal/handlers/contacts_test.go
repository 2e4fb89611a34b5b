package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) createContactViaAPI(token, first, last, email string, birthday *time.Time) models.Contact {
	payload := gin.H{
		"first_name": first,
		"last_name":  last,
		"email":      email,
		"phone":      "+380501234567",
	}
	if birthday != nil {
		payload["birthday"] = birthday.Format(time.RFC3339)
	}

	w := suite.request(http.MethodPost, "/api/v1/contacts", payload, token)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var contact models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contact))
	return contact
}

func (suite *HandlersTestSuite) TestContactsRequireAuth() {
	w := suite.request(http.MethodGet, "/api/v1/contacts", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/contacts", gin.H{}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestCreateContactEndpoint() {
	userID, token := suite.registerVerifiedUser("alice@example.com", "password123")

	contact := suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)
	assert.NotEmpty(suite.T(), contact.ID)
	assert.Equal(suite.T(), userID, contact.UserID)
	assert.Equal(suite.T(), "Jane", contact.FirstName)
}

func (suite *HandlersTestSuite) TestCreateContactEndpointDuplicateEmail() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	_, otherToken := suite.registerVerifiedUser("bob@example.com", "password123")

	suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)

	// Posting the same contact again for the same user conflicts
	w := suite.request(http.MethodPost, "/api/v1/contacts", gin.H{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@example.com",
		"phone":      "+380501234567",
	}, token)
	assert.Equal(suite.T(), http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(suite.T(), "contact with this email already exists", suite.errorMessage(w))

	// Another user is free to use the same email
	suite.createContactViaAPI(otherToken, "Jane", "Doe", "jane@example.com", nil)
}

func (suite *HandlersTestSuite) TestUpdateContactEndpointDuplicateEmail() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)
	second := suite.createContactViaAPI(token, "Bob", "Smith", "bob@example.com", nil)

	w := suite.request(http.MethodPut, "/api/v1/contacts/"+second.ID, gin.H{
		"first_name": "Bob",
		"last_name":  "Smith",
		"email":      "jane@example.com",
		"phone":      "+380501234567",
	}, token)
	assert.Equal(suite.T(), http.StatusConflict, w.Code, w.Body.String())
}

func (suite *HandlersTestSuite) TestCreateContactEndpointValidation() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPost, "/api/v1/contacts", gin.H{
		"first_name": "Jane",
		// missing last name, email, phone
	}, token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestListContactsEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	_, otherToken := suite.registerVerifiedUser("bob@example.com", "password123")

	suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)
	suite.createContactViaAPI(token, "John", "Smith", "john@example.com", nil)
	suite.createContactViaAPI(otherToken, "Eve", "Jones", "eve@example.com", nil)

	w := suite.request(http.MethodGet, "/api/v1/contacts", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "2", w.Header().Get("X-Total-Count"))

	var contacts []models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contacts))
	assert.Len(suite.T(), contacts, 2)

	// Pagination via query parameters
	w = suite.request(http.MethodGet, "/api/v1/contacts?skip=1&limit=1", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contacts))
	assert.Len(suite.T(), contacts, 1)
}

func (suite *HandlersTestSuite) TestGetContactEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	created := suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)

	w := suite.request(http.MethodGet, "/api/v1/contacts/"+created.ID, nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var contact models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contact))
	assert.Equal(suite.T(), created.ID, contact.ID)
}

func (suite *HandlersTestSuite) TestGetContactEndpointIsolation() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	_, otherToken := suite.registerVerifiedUser("bob@example.com", "password123")
	created := suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)

	// Someone else's contact behaves as missing
	w := suite.request(http.MethodGet, "/api/v1/contacts/"+created.ID, nil, otherToken)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "contact not found", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestUpdateContactEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	created := suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)

	w := suite.request(http.MethodPut, "/api/v1/contacts/"+created.ID, gin.H{
		"first_name": "Janet",
		"last_name":  "Doe",
		"email":      "janet@example.com",
		"phone":      "+380671112233",
		"notes":      "updated",
	}, token)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var contact models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contact))
	assert.Equal(suite.T(), "Janet", contact.FirstName)
	assert.Equal(suite.T(), "janet@example.com", contact.Email)
	assert.Equal(suite.T(), "updated", contact.Notes)
}

func (suite *HandlersTestSuite) TestUpdateContactEndpointNotFound() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	w := suite.request(http.MethodPut, "/api/v1/contacts/no-such-id", gin.H{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@example.com",
		"phone":      "+380501234567",
	}, token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteContactEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")
	created := suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)

	w := suite.request(http.MethodDelete, "/api/v1/contacts/"+created.ID, nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// The deleted record comes back in the response
	var contact models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contact))
	assert.Equal(suite.T(), created.ID, contact.ID)

	w = suite.request(http.MethodGet, "/api/v1/contacts/"+created.ID, nil, token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestSearchContactsEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	suite.createContactViaAPI(token, "Jane", "Doe", "jane@example.com", nil)
	suite.createContactViaAPI(token, "Janet", "Smith", "janet@example.com", nil)
	suite.createContactViaAPI(token, "Bob", "Smith", "bob@example.com", nil)

	w := suite.request(http.MethodGet, "/api/v1/contacts/search?first_name=jan", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var contacts []models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contacts))
	assert.Len(suite.T(), contacts, 2)

	w = suite.request(http.MethodGet, "/api/v1/contacts/search?first_name=jan&last_name=smith", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(suite.T(), contacts, 1)
	assert.Equal(suite.T(), "janet@example.com", contacts[0].Email)
}

func (suite *HandlersTestSuite) TestUpcomingBirthdaysEndpoint() {
	_, token := suite.registerVerifiedUser("alice@example.com", "password123")

	now := time.Now().UTC()
	soon := time.Date(1990, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 3)
	farOff := time.Date(1990, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 60)

	suite.createContactViaAPI(token, "Soon", "Birthday", "soon@example.com", &soon)
	suite.createContactViaAPI(token, "Far", "Birthday", "far@example.com", &farOff)

	w := suite.request(http.MethodGet, "/api/v1/contacts/birthdays", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var contacts []models.Contact
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(suite.T(), contacts, 1)
	assert.Equal(suite.T(), "soon@example.com", contacts[0].Email)
}
