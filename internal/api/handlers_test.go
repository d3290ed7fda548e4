// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/weblife-game/weblife/internal/config"
	"github.com/weblife-game/weblife/internal/models"
	"github.com/weblife-game/weblife/internal/services"
)

// testNarrator returns deterministic content for handler tests.
type testNarrator struct {
	eventMode bool
}

func (f *testNarrator) GenerateFamily(ctx context.Context, lastName, country string) ([]models.FamilyMember, error) {
	return []models.FamilyMember{{Relation: "mother", Name: "Ana " + lastName, Alive: true}}, nil
}

func (f *testNarrator) GenerateYearNarrative(ctx context.Context, age int, event models.GlobalEvent, city string) (string, error) {
	return "an ordinary year", nil
}

func (f *testNarrator) GenerateInteractiveEvent(ctx context.Context, character *models.Character) (*models.InteractiveEvent, error) {
	return &models.InteractiveEvent{
		Title:       "A choice",
		Description: "Pick one.",
		Options: []models.ChoiceOption{
			{Label: "Yes", ResultID: "yes"},
			{Label: "No", ResultID: "no"},
		},
	}, nil
}

func (f *testNarrator) ResolveEventChoice(ctx context.Context, event *models.InteractiveEvent, resultID string) (*models.ChoiceOutcome, error) {
	return &models.ChoiceOutcome{Narrative: "done", Impact: models.Impact{Happiness: 1}}, nil
}

func (f *testNarrator) GenerateSocialPostResult(ctx context.Context, platform models.PlatformInfo, followers int, contentType string) (*models.PostOutcome, error) {
	return &models.PostOutcome{Title: "post", Narrative: "mild success", GainFollowers: 10}, nil
}

// fixedRoller always returns the same draw, keeping turns deterministic.
type fixedRoller struct{ value float64 }

func (r fixedRoller) Float64() float64 { return r.value }
func (r fixedRoller) Intn(n int) int   { return 0 }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func newTestRouter(t *testing.T, roller services.Roller) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	narrator := &testNarrator{}
	rules := config.DefaultGameRules()
	sessionService := services.NewSessionService(narrator)
	turnService := services.NewTurnService(sessionService, narrator, roller, rules)
	socialService := services.NewSocialService(sessionService, narrator, roller, rules)

	handler := &Handler{
		SessionService: sessionService,
		TurnService:    turnService,
		SocialService:  socialService,
		Response:       NewResponseHelper(),
	}
	return buildRouter(handler)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func createTestSession(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w, env := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"first_name": "Alex",
		"last_name":  "Silva",
		"gender":     "male",
		"country":    "USA",
		"state":      "California",
		"city":       "Los Angeles",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d, body = %s", w.Code, w.Body.String())
	}

	var session models.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("created session has no ID")
	}
	return session.ID
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t, fixedRoller{value: 0.99})
	id := createTestSession(t, router)

	w, env := doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("get session: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/sessions/missing", nil)
	if w.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("missing session: status = %d, error = %+v", w.Code, env.Error)
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete session: status = %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted session still served: status = %d", w.Code)
	}
}

func TestCreateSessionRejectsBadSetup(t *testing.T) {
	router := newTestRouter(t, fixedRoller{value: 0.99})

	w, env := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"first_name": "Alex",
		"last_name":  "Silva",
		"gender":     "male",
		"country":    "Atlantis",
		"state":      "Nowhere",
		"city":       "Lost City",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestTurnEndpointAdvancesYear(t *testing.T) {
	// High roll: no chaos, no event, a quiet year.
	router := newTestRouter(t, fixedRoller{value: 0.99})
	id := createTestSession(t, router)

	w, env := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/turn", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("turn: status = %d, body = %s", w.Code, w.Body.String())
	}

	var session models.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Character.Age != 19 {
		t.Errorf("Age = %d, want 19", session.Character.Age)
	}
}

func TestChoiceEndpointFlow(t *testing.T) {
	// Low roll: every turn draws an interactive event.
	router := newTestRouter(t, fixedRoller{value: 0.5})
	id := createTestSession(t, router)

	// 0.5 hits the event draw (0.6), so the turn pauses.
	w, env := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/turn", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("turn: status = %d, body = %s", w.Code, w.Body.String())
	}
	var session models.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.State != models.StateInteractiveEvent {
		t.Fatalf("State = %q, want interactive_event", session.State)
	}

	// Unknown option is rejected.
	w, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/choice", map[string]string{"result_id": "maybe"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad choice: status = %d, want 400", w.Code)
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/choice", map[string]string{"result_id": "yes"})
	if w.Code != http.StatusOK {
		t.Fatalf("choice: status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Character.Age != 19 {
		t.Errorf("Age = %d, want 19 after the event year resolves", session.Character.Age)
	}

	// No pending event anymore.
	w, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/choice", map[string]string{"result_id": "yes"})
	if w.Code != http.StatusConflict {
		t.Errorf("choice without pending event: status = %d, want 409", w.Code)
	}
}

func TestSocialEndpoints(t *testing.T) {
	router := newTestRouter(t, fixedRoller{value: 0.99})
	id := createTestSession(t, router)

	w, _ := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/social/youtube/account", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create account: status = %d, body = %s", w.Code, w.Body.String())
	}

	w, env := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/social/youtube/posts", map[string]string{"content_type": "video"})
	if w.Code != http.StatusOK {
		t.Fatalf("post: status = %d, body = %s", w.Code, w.Body.String())
	}
	var session models.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Character.Account(models.PlatformYouTube).Followers != 10 {
		t.Errorf("Followers = %d, want 10", session.Character.Account(models.PlatformYouTube).Followers)
	}

	// Not enough money for fake followers.
	w, _ = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/social/youtube/followers/buy", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("buy followers broke: status = %d, want 400", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/sessions/"+id+"/social/youtube/account", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete account: status = %d", w.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	router := newTestRouter(t, fixedRoller{value: 0.99})

	w, env := doJSON(t, router, http.MethodGet, "/api/platforms", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("platforms: status = %d", w.Code)
	}
	var platforms []models.PlatformInfo
	if err := json.Unmarshal(env.Data, &platforms); err != nil {
		t.Fatalf("decode platforms: %v", err)
	}
	if len(platforms) != len(models.AllPlatforms) {
		t.Errorf("platform count = %d, want %d", len(platforms), len(models.AllPlatforms))
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/geography", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("geography: status = %d", w.Code)
	}
	var countries []models.Country
	if err := json.Unmarshal(env.Data, &countries); err != nil {
		t.Fatalf("decode geography: %v", err)
	}
	if len(countries) == 0 {
		t.Error("geography catalog is empty")
	}
}

func TestSessionLogsEndpoint(t *testing.T) {
	router := newTestRouter(t, fixedRoller{value: 0.99})
	id := createTestSession(t, router)

	if w, _ := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/turn", nil); w.Code != http.StatusOK {
		t.Fatalf("turn: status = %d", w.Code)
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/logs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logs: status = %d", w.Code)
	}
	var years []models.YearLog
	if err := json.Unmarshal(env.Data, &years); err != nil {
		t.Fatalf("decode year logs: %v", err)
	}
	if len(years) == 0 {
		t.Fatal("no journal years returned")
	}
	if years[0].Year != 18 {
		t.Errorf("first year = %d, want 18", years[0].Year)
	}
}

func TestAdminGuardOnLLMConfig(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "hunter2")
	router := newTestRouter(t, fixedRoller{value: 0.99})

	body := map[string]interface{}{
		"provider": "gemini",
		"config":   map[string]string{"api_key": "k"},
	}
	data, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPut, "/api/llm/config", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", w.Code)
	}
}
