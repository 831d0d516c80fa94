package profile_test

import (
	"encoding/json"
	"testing"

	"github.com/contabank/contabank/webapi/common"
	"github.com/contabank/contabank/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ProfileTestSuite struct {
	testutils.E2ETestSuite

	userID uuid.UUID
	token  string
}

func (s *ProfileTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.userID = s.CreateTestUser("Ana", "ana@example.com", "senha123")
	s.token = s.LoginTestUser("ana@example.com", "senha123")
}

func (s *ProfileTestSuite) TestGetProfile() {
	resp := s.MakeRequest("GET", "/profile", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var response common.Response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	data := response.Data.(map[string]any)
	s.Equal("Ana", data["name"])
	s.Equal("ana@example.com", data["email"])
}

func (s *ProfileTestSuite) TestGetProfile_RequiresToken() {
	resp := s.MakeRequest("GET", "/profile", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *ProfileTestSuite) TestUpdateEmail_Success() {
	resp := s.MakeRequest("PUT", "/profile/email", `{"email":"nova@example.com"}`, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	// The new address works for the next login.
	sess, err := s.Application.Auth.Login(s.T().Context(), "nova@example.com", "senha123")
	s.Require().NoError(err)
	s.Equal(s.userID, sess.UserID)
}

func (s *ProfileTestSuite) TestUpdateEmail_SameAddressRejected() {
	resp := s.MakeRequest("PUT", "/profile/email", `{"email":"ana@example.com"}`, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *ProfileTestSuite) TestUpdateEmail_MalformedAddressRejected() {
	resp := s.MakeRequest("PUT", "/profile/email", `{"email":"not-an-email"}`, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *ProfileTestSuite) TestUpdatePassword_Success() {
	body := `{"current_password":"senha123","new_password":"novasenha","confirm_password":"novasenha"}`
	resp := s.MakeRequest("PUT", "/profile/password", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)

	_, err := s.Application.Auth.Login(s.T().Context(), "ana@example.com", "novasenha")
	s.NoError(err)
}

func (s *ProfileTestSuite) TestUpdatePassword_WrongCurrentPassword() {
	body := `{"current_password":"errada","new_password":"novasenha","confirm_password":"novasenha"}`
	resp := s.MakeRequest("PUT", "/profile/password", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *ProfileTestSuite) TestUpdatePassword_ConfirmationMismatch() {
	body := `{"current_password":"senha123","new_password":"novasenha","confirm_password":"outra"}`
	resp := s.MakeRequest("PUT", "/profile/password", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *ProfileTestSuite) TestUpdatePassword_TooShort() {
	body := `{"current_password":"senha123","new_password":"abc","confirm_password":"abc"}`
	resp := s.MakeRequest("PUT", "/profile/password", body, s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfileTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileTestSuite))
}
