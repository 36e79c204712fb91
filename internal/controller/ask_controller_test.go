package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-knowledge-router-be/internal/dto"
	"ai-knowledge-router-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type stubAskService struct {
	curated bool
	request *dto.AskRequest
}

func (s *stubAskService) Ask(ctx context.Context, userId uuid.UUID, curatedMode bool, request *dto.AskRequest) (*dto.AskResponse, error) {
	s.curated = curatedMode
	s.request = request
	return &dto.AskResponse{TurnResponse: dto.TurnResponse{Answer: "12 hari", Citations: []dto.CitationDTO{}}}, nil
}

func (s *stubAskService) GetTurns(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetTurnsResponse, error) {
	return &dto.GetTurnsResponse{ConversationId: conversationId, Turns: []*dto.TurnResponse{}}, nil
}

func newApp(svc *stubAskService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewAskController(svc).RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(secret))
	return app
}

func token(t *testing.T, claims jwt.MapClaims) string {
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestAsk_Success(t *testing.T) {
	svc := &stubAskService{}
	app := newApp(svc)

	body := `{"conversation_id":"` + uuid.NewString() + `","question":"Berapa hari cuti?","modes":{"company":true}}`
	req := httptest.NewRequest("POST", "/api/conversations/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t, jwt.MapClaims{"user_id": uuid.NewString(), "features": []string{"curated_kb"}}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, svc.curated)
	assert.True(t, svc.request.Modes.Company)

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["success"])
}

func TestAsk_ValidationAndAuth(t *testing.T) {
	app := newApp(&stubAskService{})

	req := httptest.NewRequest("POST", "/api/conversations/ask", strings.NewReader(`{"question":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t, jwt.MapClaims{"user_id": uuid.NewString()}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/conversations/ask", strings.NewReader(`{}`))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/conversations/"+uuid.NewString()+"/turns", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestGetTurns(t *testing.T) {
	app := newApp(&stubAskService{})
	auth := token(t, jwt.MapClaims{"user_id": uuid.NewString()})

	req := httptest.NewRequest("GET", "/api/conversations/"+uuid.NewString()+"/turns", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/conversations/nope/turns", nil)
	req.Header.Set("Authorization", auth)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
