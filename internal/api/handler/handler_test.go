package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"convention-planner/internal/dto"
	"convention-planner/internal/model"
	"convention-planner/internal/planner"
	"convention-planner/internal/service"
	"convention-planner/pkg/jwt"
	"convention-planner/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testConventionID = "7d3c1f4e-2a4b-4c8e-9f10-3b2a1c0d9e8f"

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ConventionService ──

type mockConventionService struct {
	createResult *dto.CreateConventionResponse
	createErr    error
	listResult   []dto.ConventionBrief
	listTotal    int64
	listErr      error
	getResult    *dto.ConventionResponse
	getErr       error
	updateResult *dto.ConventionResponse
	updateErr    error
	deleteErr    error
}

func (m *mockConventionService) Create(_ context.Context, _ *dto.CreateConventionRequest) (*dto.CreateConventionResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockConventionService) List(_ context.Context, _ *dto.ConventionListRequest) ([]dto.ConventionBrief, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockConventionService) GetByID(_ context.Context, _ string) (*dto.ConventionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockConventionService) Update(_ context.Context, _ string, _ *dto.UpdateConventionRequest) (*dto.ConventionResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockConventionService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock AuthService ──

type mockAuthService struct {
	issueResult   *dto.EditTokenResponse
	issueErr      error
	revokeErr     error
	revokedJTI    string
	changePassErr error
}

func (m *mockAuthService) IssueEditToken(_ context.Context, _ string, _ *dto.EditTokenRequest) (*dto.EditTokenResponse, error) {
	return m.issueResult, m.issueErr
}
func (m *mockAuthService) RevokeEditToken(_ context.Context, claims *jwt.Claims) error {
	m.revokedJTI = claims.ID
	return m.revokeErr
}
func (m *mockAuthService) ChangePasscode(_ context.Context, _ string, _ *dto.ChangePasscodeRequest) error {
	return m.changePassErr
}

// ── Mock PlanService ──

type mockPlanService struct {
	calcInput *dto.PlanParametersRequest
	plan      *dto.ConventionPlanResponse
	grid      *dto.GridResponse
	err       error
}

func (m *mockPlanService) Calculate(req *dto.PlanParametersRequest) planner.Result {
	m.calcInput = req
	return planner.Result{}
}
func (m *mockPlanService) GetPlan(_ context.Context, _ string) (*dto.ConventionPlanResponse, error) {
	return m.plan, m.err
}
func (m *mockPlanService) GetGrid(_ context.Context, _ string) (*dto.GridResponse, error) {
	return m.grid, m.err
}

// ── Mock LayoutService ──

type mockLayoutService struct {
	placement *dto.PlacementResponse
	grid      *dto.GridResponse
	err       error
}

func (m *mockLayoutService) AutoPopulate(_ context.Context, _ string) (*dto.GridResponse, error) {
	return m.grid, m.err
}
func (m *mockLayoutService) AssignRoundTable(_ context.Context, _ string, _ *dto.AssignRoundTableRequest) (*dto.PlacementResponse, error) {
	return m.placement, m.err
}
func (m *mockLayoutService) AssignRoundTableToSlot(_ context.Context, _ string, _ *dto.AssignRoundTableToSlotRequest) (*dto.PlacementResponse, error) {
	return m.placement, m.err
}
func (m *mockLayoutService) AssignPaperSession(_ context.Context, _ string, _ *dto.PositionRequest) (*dto.PlacementResponse, error) {
	return m.placement, m.err
}
func (m *mockLayoutService) RemoveAt(_ context.Context, _ string, _ *dto.PositionRequest) (*dto.PlacementResponse, error) {
	return m.placement, m.err
}
func (m *mockLayoutService) Clear(_ context.Context, _ string) error {
	return m.err
}

// ── Mock PaperService ──

type mockPaperService struct {
	paper        *dto.PaperResponse
	list         []dto.PaperResponse
	importResult *dto.ImportResult
	importedAs   string
	importedBody string
	export       []byte
	err          error
}

func (m *mockPaperService) Create(_ context.Context, _ string, _ *dto.CreatePaperRequest) (*dto.PaperResponse, error) {
	return m.paper, m.err
}
func (m *mockPaperService) List(_ context.Context, _ string) ([]dto.PaperResponse, error) {
	return m.list, m.err
}
func (m *mockPaperService) Update(_ context.Context, _, _ string, _ *dto.UpdatePaperRequest) (*dto.PaperResponse, error) {
	return m.paper, m.err
}
func (m *mockPaperService) Delete(_ context.Context, _, _ string) error {
	return m.err
}
func (m *mockPaperService) ImportCSV(_ context.Context, _ string, r io.Reader) (*dto.ImportResult, error) {
	m.importedAs = "csv"
	b, _ := io.ReadAll(r)
	m.importedBody = string(b)
	return m.importResult, m.err
}
func (m *mockPaperService) ImportXLSX(_ context.Context, _ string, _ io.Reader) (*dto.ImportResult, error) {
	m.importedAs = "xlsx"
	return m.importResult, m.err
}
func (m *mockPaperService) ExportCSV(_ context.Context, _ string) ([]byte, error) {
	return m.export, m.err
}

// ── Mock AssignmentService ──

type mockAssignmentService struct {
	list          *dto.PaperAssignmentsResponse
	session       *dto.SessionPapersResponse
	removedNumber int
	removedPaper  string
	err           error
}

func (m *mockAssignmentService) List(_ context.Context, _ string) (*dto.PaperAssignmentsResponse, error) {
	return m.list, m.err
}
func (m *mockAssignmentService) Assign(_ context.Context, _ string, _ *dto.AssignPaperRequest) (*dto.SessionPapersResponse, error) {
	return m.session, m.err
}
func (m *mockAssignmentService) Remove(_ context.Context, _ string, sessionNumber int, paperID string) error {
	m.removedNumber = sessionNumber
	m.removedPaper = paperID
	return m.err
}
func (m *mockAssignmentService) AutoAssign(_ context.Context, _ string) (*dto.PaperAssignmentsResponse, error) {
	return m.list, m.err
}
func (m *mockAssignmentService) Clear(_ context.Context, _ string) error {
	return m.err
}

// ── Mock PeopleService ──

type mockPeopleService struct {
	role   string
	person *dto.PersonResponse
	list   []dto.PersonResponse
	rooms  []dto.RoomResponse
	err    error
}

func (m *mockPeopleService) Create(_ context.Context, _, role string, _ *dto.PersonRequest) (*dto.PersonResponse, error) {
	m.role = role
	return m.person, m.err
}
func (m *mockPeopleService) List(_ context.Context, _, role string) ([]dto.PersonResponse, error) {
	m.role = role
	return m.list, m.err
}
func (m *mockPeopleService) Update(_ context.Context, _, role, _ string, _ *dto.PersonRequest) (*dto.PersonResponse, error) {
	m.role = role
	return m.person, m.err
}
func (m *mockPeopleService) Delete(_ context.Context, _, role, _ string) error {
	m.role = role
	return m.err
}
func (m *mockPeopleService) ListRooms(_ context.Context, _ string) ([]dto.RoomResponse, error) {
	return m.rooms, m.err
}
func (m *mockPeopleService) UpdateRooms(_ context.Context, _ string, _ *dto.UpdateRoomNamesRequest) ([]dto.RoomResponse, error) {
	return m.rooms, m.err
}

// ── Mock CustomizationService ──

type mockCustomizationService struct {
	key    string
	custom *dto.CustomizationResponse
	err    error
}

func (m *mockCustomizationService) List(_ context.Context, _ string) ([]dto.CustomizationResponse, error) {
	return nil, m.err
}
func (m *mockCustomizationService) Get(_ context.Context, _, key string) (*dto.CustomizationResponse, error) {
	m.key = key
	return m.custom, m.err
}
func (m *mockCustomizationService) Upsert(_ context.Context, _, key string, _ *dto.UpsertCustomizationRequest) (*dto.CustomizationResponse, error) {
	m.key = key
	return m.custom, m.err
}
func (m *mockCustomizationService) Delete(_ context.Context, _, key string) error {
	m.key = key
	return m.err
}

// ── Mock LabelService ──

type mockLabelService struct {
	labels       *dto.LabelsResponse
	autoReq      *dto.AutoSlotTimesRequest
	importResult *dto.ImportResult
	err          error
}

func (m *mockLabelService) Get(_ context.Context, _ string) (*dto.LabelsResponse, error) {
	return m.labels, m.err
}
func (m *mockLabelService) UpdateSlotLabels(_ context.Context, _ string, _ *dto.UpdateSlotLabelsRequest) (*dto.LabelsResponse, error) {
	return m.labels, m.err
}
func (m *mockLabelService) UpdateSessionLabels(_ context.Context, _ string, _ *dto.UpdateSessionLabelsRequest) (*dto.LabelsResponse, error) {
	return m.labels, m.err
}
func (m *mockLabelService) UpdateSlotTimes(_ context.Context, _ string, _ *dto.UpdateSlotTimesRequest) (*dto.LabelsResponse, error) {
	return m.labels, m.err
}
func (m *mockLabelService) AutoSlotTimes(_ context.Context, _ string, req *dto.AutoSlotTimesRequest) (*dto.LabelsResponse, error) {
	m.autoReq = req
	return m.labels, m.err
}
func (m *mockLabelService) ImportSlotTimesICS(_ context.Context, _ string, _ io.Reader) (*dto.ImportResult, error) {
	return m.importResult, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("claims", &jwt.Claims{ConventionID: testConventionID, TokenType: jwt.TokenTypeEdit})
	c.Set("convention_id", testConventionID)
}

func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// serve 注册单条路由并发送请求
func serve(method, route, target string, h gin.HandlerFunc, body io.Reader, contentType string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, h)
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serveJSON(method, route, target string, h gin.HandlerFunc, v interface{}) *httptest.ResponseRecorder {
	return serve(method, route, target, h, jsonBody(v), "application/json")
}

func multipartFile(t *testing.T, field, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected %d, got %d", status, w.Code)
	}
	if resp := parseResponse(w); resp.Code != code {
		t.Errorf("expected code %d, got %d", code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PlanHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPlanHandler_Calculate_LenientNumbers(t *testing.T) {
	mock := &mockPlanService{}
	h := NewPlanHandler(mock)

	body := strings.NewReader(`{"convention_days":"4","total_papers":"abc","time_slots_per_day":5}`)
	w := serve("POST", "/plans/calculate", "/plans/calculate", h.Calculate, body, "application/json")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.calcInput == nil {
		t.Fatal("expected Calculate to be called")
	}
	if got := mock.calcInput.ConventionDays.Int(); got != 4 {
		t.Errorf("expected convention_days 4, got %d", got)
	}
	if got := mock.calcInput.TotalPapers.Int(); got != 0 {
		t.Errorf("expected garbage total_papers to coerce to 0, got %d", got)
	}
}

func TestPlanHandler_Calculate_ClampsOversizedInput(t *testing.T) {
	svc := service.NewPlanService(nil, planner.StandardDefaults(), zap.NewNop())
	h := NewPlanHandler(svc)

	body := strings.NewReader(`{"convention_days":2147483647,"time_slots_per_day":"99999","available_rooms":1e12,` +
		`"sessions_per_time_slot":5000,"total_papers":2147483647,"papers_per_session":1,"min_papers_per_session":1,` +
		`"max_papers_per_session":1,"total_round_tables":999999,"round_table_duration":1000}`)
	w := serve("POST", "/plans/calculate", "/plans/calculate", h.Calculate, body, "application/json")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data planner.Result `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	p := resp.Data.Parameters
	if p.ConventionDays != planner.LimitConventionDays {
		t.Errorf("expected days clamped to %d, got %d", planner.LimitConventionDays, p.ConventionDays)
	}
	if p.StandardTimeSlots != planner.LimitTimeSlotsPerDay {
		t.Errorf("expected slots clamped to %d, got %d", planner.LimitTimeSlotsPerDay, p.StandardTimeSlots)
	}
	if p.StandardRooms != planner.LimitRoomsPerDay {
		t.Errorf("expected rooms clamped to %d, got %d", planner.LimitRoomsPerDay, p.StandardRooms)
	}
	if p.TotalPapers != planner.LimitTotalPapers {
		t.Errorf("expected papers clamped to %d, got %d", planner.LimitTotalPapers, p.TotalPapers)
	}
	if p.TotalRoundTables != planner.LimitRoundTables {
		t.Errorf("expected round tables clamped to %d, got %d", planner.LimitRoundTables, p.TotalRoundTables)
	}
	if resp.Data.PaperSessions != planner.LimitTotalPapers {
		t.Errorf("expected %d one-paper sessions, got %d", planner.LimitTotalPapers, resp.Data.PaperSessions)
	}
}

func TestPlanHandler_Calculate_MalformedJSON(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{})

	w := serve("POST", "/plans/calculate", "/plans/calculate", h.Calculate, strings.NewReader(`{`), "application/json")
	assertError(t, w, http.StatusBadRequest, 10001)
}

func TestPlanHandler_GetGrid_NotFound(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{err: service.ErrConventionNotFound})

	w := serve("GET", "/conventions/:id/grid", "/conventions/x/grid", h.GetGrid, nil, "")
	assertError(t, w, http.StatusNotFound, 12001)
}

func TestPlanHandler_GetPlan_InternalError(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{err: errors.New("db down")})

	w := serve("GET", "/conventions/:id/plan", "/conventions/x/plan", h.GetPlan, nil, "")
	assertError(t, w, http.StatusInternalServerError, 50000)
}

// ═══════════════════════════════════════════════════════════
// ConventionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestConventionHandler_Create_Success(t *testing.T) {
	mock := &mockConventionService{
		createResult: &dto.CreateConventionResponse{
			Convention:        dto.ConventionResponse{ID: testConventionID, Name: "ICML"},
			EditTokenResponse: dto.EditTokenResponse{ConventionID: testConventionID, EditToken: "tok"},
		},
	}
	h := NewConventionHandler(mock)

	w := serveJSON("POST", "/conventions", "/conventions", h.CreateConvention, map[string]interface{}{"name": "ICML"})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"edit_token":"tok"`) {
		t.Errorf("expected edit token in body, got %s", w.Body.String())
	}
}

func TestConventionHandler_Create_MissingName(t *testing.T) {
	h := NewConventionHandler(&mockConventionService{})

	w := serveJSON("POST", "/conventions", "/conventions", h.CreateConvention, map[string]interface{}{"convention_days": 3})
	assertError(t, w, http.StatusBadRequest, 10001)
}

func TestConventionHandler_List_Pagination(t *testing.T) {
	mock := &mockConventionService{
		listResult: []dto.ConventionBrief{{ID: "a"}, {ID: "b"}},
		listTotal:  5,
	}
	h := NewConventionHandler(mock)

	w := serve("GET", "/conventions", "/conventions?page=2&page_size=2", h.ListConventions, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Page != 2 || body.Data.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

func TestConventionHandler_List_BadPageSize(t *testing.T) {
	h := NewConventionHandler(&mockConventionService{})

	w := serve("GET", "/conventions", "/conventions?page_size=1000", h.ListConventions, nil, "")
	assertError(t, w, http.StatusBadRequest, 10001)
}

func TestConventionHandler_Update_VersionConflict(t *testing.T) {
	h := NewConventionHandler(&mockConventionService{updateErr: service.ErrConventionVersionConflict})

	w := serveJSON("PUT", "/conventions/:id", "/conventions/"+testConventionID, h.UpdateConvention,
		map[string]interface{}{"version": 1, "convention_days": 2})
	assertError(t, w, http.StatusConflict, 12002)
}

func TestConventionHandler_Update_MissingVersion(t *testing.T) {
	h := NewConventionHandler(&mockConventionService{})

	w := serveJSON("PUT", "/conventions/:id", "/conventions/"+testConventionID, h.UpdateConvention,
		map[string]interface{}{"convention_days": 2})
	assertError(t, w, http.StatusBadRequest, 10001)
}

func TestConventionHandler_Delete_NotFound(t *testing.T) {
	h := NewConventionHandler(&mockConventionService{deleteErr: service.ErrConventionNotFound})

	w := serve("DELETE", "/conventions/:id", "/conventions/x", h.DeleteConvention, nil, "")
	assertError(t, w, http.StatusNotFound, 12001)
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_IssueEditToken(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"success", nil, http.StatusOK, 0},
		{"wrong passcode", service.ErrInvalidPasscode, http.StatusUnauthorized, 11001},
		{"no passcode", service.ErrPasscodeNotSet, http.StatusForbidden, 11002},
		{"not found", service.ErrConventionNotFound, http.StatusNotFound, 12001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuthService{issueResult: &dto.EditTokenResponse{EditToken: "tok"}, issueErr: tt.err}
			h := NewAuthHandler(mock)

			w := serveJSON("POST", "/conventions/:id/edit-token", "/conventions/x/edit-token", h.IssueEditToken,
				map[string]string{"passcode": "secret"})
			assertError(t, w, tt.status, tt.code)
		})
	}
}

func TestAuthHandler_RevokeEditToken_NoClaims(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("DELETE", "/conventions/:id/edit-token", "/conventions/x/edit-token", h.RevokeEditToken, nil, "")
	assertError(t, w, http.StatusUnauthorized, 10002)
}

func TestAuthHandler_RevokeEditToken_Unavailable(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{revokeErr: service.ErrRevocationUnavailable})

	w := serve("DELETE", "/conventions/:id/edit-token", "/conventions/x/edit-token", withAuth(h.RevokeEditToken), nil, "")
	assertError(t, w, http.StatusServiceUnavailable, 11003)
}

func TestAuthHandler_ChangePasscode_TooShort(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serveJSON("PUT", "/conventions/:id/passcode", "/conventions/x/passcode", h.ChangePasscode,
		map[string]string{"passcode": "ab"})
	assertError(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// LayoutHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLayoutHandler_AssignPaperSession_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrPositionOccupied, http.StatusConflict, 13001},
		{service.ErrPositionOutOfRange, http.StatusBadRequest, 13002},
		{service.ErrAllSessionsPlaced, http.StatusConflict, 13006},
	}
	for _, tt := range tests {
		h := NewLayoutHandler(&mockLayoutService{err: tt.err})
		w := serveJSON("POST", "/conventions/:id/layout/paper-sessions", "/conventions/x/layout/paper-sessions",
			h.AssignPaperSession, map[string]int{"day": 1, "slot": 0, "position": 0})
		assertError(t, w, tt.status, tt.code)
	}
}

func TestLayoutHandler_AssignRoundTable_Success(t *testing.T) {
	placement := &dto.PlacementResponse{
		Kind:         planner.CellRoundTable,
		Position:     planner.Position{Day: 1, Slot: 2, Index: 0},
		RoundTableID: 1,
	}
	h := NewLayoutHandler(&mockLayoutService{placement: placement})

	w := serveJSON("POST", "/conventions/:id/layout/round-tables", "/conventions/x/layout/round-tables",
		h.AssignRoundTable, map[string]int{"round_table_id": 1, "day": 1, "slot": 2, "position": 0})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLayoutHandler_RemoveAt_DayRequired(t *testing.T) {
	h := NewLayoutHandler(&mockLayoutService{})

	w := serveJSON("POST", "/conventions/:id/layout/remove", "/conventions/x/layout/remove",
		h.RemoveAt, map[string]int{"slot": 0, "position": 0})
	assertError(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// PaperHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPaperHandler_Import_CSV(t *testing.T) {
	mock := &mockPaperService{importResult: &dto.ImportResult{Imported: 1}}
	h := NewPaperHandler(mock)

	body, ct := multipartFile(t, "file", "Papers.CSV", "title,student,school\nA,B,C\n")
	w := serve("POST", "/conventions/:id/papers/import", "/conventions/x/papers/import", h.ImportPapers, body, ct)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.importedAs != "csv" {
		t.Errorf("expected csv import, got %q", mock.importedAs)
	}
	if !strings.HasPrefix(mock.importedBody, "title,student,school") {
		t.Errorf("expected uploaded content to reach the service, got %q", mock.importedBody)
	}
}

func TestPaperHandler_Import_XLSX(t *testing.T) {
	mock := &mockPaperService{importResult: &dto.ImportResult{}}
	h := NewPaperHandler(mock)

	body, ct := multipartFile(t, "file", "roster.xlsx", "PK")
	serve("POST", "/conventions/:id/papers/import", "/conventions/x/papers/import", h.ImportPapers, body, ct)

	if mock.importedAs != "xlsx" {
		t.Errorf("expected xlsx import, got %q", mock.importedAs)
	}
}

func TestPaperHandler_Import_Rejected(t *testing.T) {
	h := NewPaperHandler(&mockPaperService{})

	body, ct := multipartFile(t, "file", "roster.txt", "x")
	w := serve("POST", "/conventions/:id/papers/import", "/conventions/x/papers/import", h.ImportPapers, body, ct)
	assertError(t, w, http.StatusBadRequest, 14000)

	w = serve("POST", "/conventions/:id/papers/import", "/conventions/x/papers/import", h.ImportPapers, nil, "")
	assertError(t, w, http.StatusBadRequest, 14000)
}

func TestPaperHandler_Import_BadHeader(t *testing.T) {
	h := NewPaperHandler(&mockPaperService{err: service.ErrImportBadHeader})

	body, ct := multipartFile(t, "file", "p.csv", "a,b\n")
	w := serve("POST", "/conventions/:id/papers/import", "/conventions/x/papers/import", h.ImportPapers, body, ct)
	assertError(t, w, http.StatusBadRequest, 14003)
}

func TestPaperHandler_Export(t *testing.T) {
	h := NewPaperHandler(&mockPaperService{export: []byte("Title,Student,School,Category\n")})

	w := serve("GET", "/conventions/:id/papers/export", "/conventions/x/papers/export", h.ExportPapers, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "papers.csv") {
		t.Errorf("expected attachment filename, got %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if w.Body.String() != "Title,Student,School,Category\n" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestPaperHandler_Update_NotFound(t *testing.T) {
	h := NewPaperHandler(&mockPaperService{err: service.ErrPaperNotFound})

	w := serveJSON("PUT", "/conventions/:id/papers/:paper_id", "/conventions/x/papers/p1", h.UpdatePaper,
		map[string]string{"title": "New"})
	assertError(t, w, http.StatusNotFound, 14001)
}

// ═══════════════════════════════════════════════════════════
// AssignmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAssignmentHandler_RemovePaper(t *testing.T) {
	mock := &mockAssignmentService{}
	h := NewAssignmentHandler(mock)

	w := serve("DELETE", "/conventions/:id/assignments/:session/:paper_id", "/conventions/x/assignments/3/p9", h.RemovePaper, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.removedNumber != 3 || mock.removedPaper != "p9" {
		t.Errorf("expected session 3 / paper p9, got %d / %s", mock.removedNumber, mock.removedPaper)
	}

	w = serve("DELETE", "/conventions/:id/assignments/:session/:paper_id", "/conventions/x/assignments/zero/p9", h.RemovePaper, nil, "")
	assertError(t, w, http.StatusBadRequest, 10001)
}

func TestAssignmentHandler_AssignPaper_Full(t *testing.T) {
	h := NewAssignmentHandler(&mockAssignmentService{err: service.ErrSessionFull})

	w := serveJSON("POST", "/conventions/:id/assignments", "/conventions/x/assignments", h.AssignPaper,
		map[string]interface{}{"session_number": 1, "paper_id": testConventionID})
	assertError(t, w, http.StatusConflict, 15002)
}

func TestAssignmentHandler_AssignPaper_InvalidPaperID(t *testing.T) {
	h := NewAssignmentHandler(&mockAssignmentService{})

	w := serveJSON("POST", "/conventions/:id/assignments", "/conventions/x/assignments", h.AssignPaper,
		map[string]interface{}{"session_number": 1, "paper_id": "not-a-uuid"})
	assertError(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// PeopleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPeopleHandler_RoleBoundAtRoute(t *testing.T) {
	mock := &mockPeopleService{person: &dto.PersonResponse{ID: "p1"}}
	h := NewPeopleHandler(mock)

	w := serveJSON("POST", "/conventions/:id/chairs", "/conventions/x/chairs", h.CreatePerson(model.RoleChair),
		map[string]string{"name": "Chen"})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.role != model.RoleChair {
		t.Errorf("expected role chair, got %q", mock.role)
	}

	serve("GET", "/conventions/:id/moderators", "/conventions/x/moderators", h.ListPeople(model.RoleModerator), nil, "")
	if mock.role != model.RoleModerator {
		t.Errorf("expected role moderator, got %q", mock.role)
	}
}

func TestPeopleHandler_Errors(t *testing.T) {
	h := NewPeopleHandler(&mockPeopleService{err: service.ErrPersonNotFound})
	w := serve("DELETE", "/conventions/:id/chairs/:person_id", "/conventions/x/chairs/p1", h.DeletePerson(model.RoleChair), nil, "")
	assertError(t, w, http.StatusNotFound, 16001)

	h = NewPeopleHandler(&mockPeopleService{err: service.ErrRoomOutOfRange})
	w = serveJSON("PUT", "/conventions/:id/rooms", "/conventions/x/rooms", h.UpdateRooms,
		map[string]interface{}{"rooms": []map[string]interface{}{{"room_number": 9, "name": "Hall"}}})
	assertError(t, w, http.StatusBadRequest, 16003)
}

func TestPeopleHandler_Create_BadEmail(t *testing.T) {
	h := NewPeopleHandler(&mockPeopleService{})

	w := serveJSON("POST", "/conventions/:id/moderators", "/conventions/x/moderators", h.CreatePerson(model.RoleModerator),
		map[string]string{"name": "Zhang", "email": "nope"})
	assertError(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// CustomizationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCustomizationHandler_Upsert(t *testing.T) {
	mock := &mockCustomizationService{custom: &dto.CustomizationResponse{PositionKey: "day1_slot0_pos0"}}
	h := NewCustomizationHandler(mock)

	w := serveJSON("PUT", "/conventions/:id/customizations/:key", "/conventions/x/customizations/day1_slot0_pos0",
		h.UpsertCustomization, map[string]interface{}{"session_type": "paper", "paper_count": 3})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.key != "day1_slot0_pos0" {
		t.Errorf("expected key from path, got %q", mock.key)
	}
}

func TestCustomizationHandler_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrInvalidPositionKey, http.StatusBadRequest, 17001},
		{service.ErrCustomizationNotFound, http.StatusNotFound, 17002},
		{service.ErrModeratorNotFound, http.StatusBadRequest, 17003},
		{service.ErrPositionOutOfRange, http.StatusBadRequest, 13002},
	}
	for _, tt := range tests {
		h := NewCustomizationHandler(&mockCustomizationService{err: tt.err})
		w := serve("GET", "/conventions/:id/customizations/:key", "/conventions/x/customizations/k", h.GetCustomization, nil, "")
		assertError(t, w, tt.status, tt.code)
	}
}

func TestCustomizationHandler_Upsert_BadType(t *testing.T) {
	h := NewCustomizationHandler(&mockCustomizationService{})

	w := serveJSON("PUT", "/conventions/:id/customizations/:key", "/conventions/x/customizations/k",
		h.UpsertCustomization, map[string]string{"session_type": "keynote"})
	assertError(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// LabelHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLabelHandler_AutoSlotTimes_EmptyBody(t *testing.T) {
	mock := &mockLabelService{labels: &dto.LabelsResponse{}}
	h := NewLabelHandler(mock)

	w := serve("POST", "/conventions/:id/labels/times/auto", "/conventions/x/labels/times/auto", h.AutoSlotTimes, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.autoReq == nil || mock.autoReq.StartTime != "" {
		t.Errorf("expected empty request to use defaults, got %+v", mock.autoReq)
	}
}

func TestLabelHandler_UpdateSlotTimes_InvalidClock(t *testing.T) {
	h := NewLabelHandler(&mockLabelService{err: service.ErrInvalidClock})

	w := serveJSON("PUT", "/conventions/:id/labels/times", "/conventions/x/labels/times", h.UpdateSlotTimes,
		map[string]interface{}{"times": []map[string]interface{}{{"day": 1, "slot": 0, "start_time": "99:99"}}})
	assertError(t, w, http.StatusBadRequest, 18004)
}

func TestLabelHandler_ImportICS_File(t *testing.T) {
	h := NewLabelHandler(&mockLabelService{importResult: &dto.ImportResult{Imported: 2}})

	body, ct := multipartFile(t, "file", "venue.ics", "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	w := serve("POST", "/conventions/:id/labels/times/ics", "/conventions/x/labels/times/ics", h.ImportSlotTimesICS, body, ct)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLabelHandler_ImportICS_Missing(t *testing.T) {
	h := NewLabelHandler(&mockLabelService{})

	w := serveJSON("POST", "/conventions/:id/labels/times/ics", "/conventions/x/labels/times/ics", h.ImportSlotTimesICS,
		map[string]string{})
	assertError(t, w, http.StatusBadRequest, 18000)
}

func TestLabelHandler_ImportICS_URLRejectsInternalTargets(t *testing.T) {
	venue := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	}))
	defer venue.Close()

	h := NewLabelHandler(&mockLabelService{importResult: &dto.ImportResult{Imported: 1}})
	for _, u := range []string{venue.URL + "/venue.ics", "file:///etc/passwd", "http://169.254.169.254/latest/meta-data"} {
		w := serveJSON("POST", "/conventions/:id/labels/times/ics", "/conventions/x/labels/times/ics", h.ImportSlotTimesICS,
			map[string]string{"url": u})
		assertError(t, w, http.StatusBadRequest, 18008)
	}
}

func TestLabelHandler_ImportICS_NoEvents(t *testing.T) {
	h := NewLabelHandler(&mockLabelService{err: service.ErrICSNoEvents})

	body, ct := multipartFile(t, "file", "venue.ics", "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	w := serve("POST", "/conventions/:id/labels/times/ics", "/conventions/x/labels/times/ics", h.ImportSlotTimesICS, body, ct)
	assertError(t, w, http.StatusBadRequest, 18005)
}
