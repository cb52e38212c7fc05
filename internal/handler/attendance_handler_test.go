package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/attendance"
	"github.com/BheemChand1/attendance-backend/internal/auth"
	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/internal/model"
)

type memAttendanceRepo struct {
	records  []*model.Attendance
	evidence []*model.AttendancePhoto
	nextID   uint
}

func (r *memAttendanceRepo) InTransaction(fn func(tx attendance.Repository) error) error {
	recs := make([]*model.Attendance, len(r.records))
	copy(recs, r.records)
	evs := make([]*model.AttendancePhoto, len(r.evidence))
	copy(evs, r.evidence)
	if err := fn(r); err != nil {
		r.records = recs
		r.evidence = evs
		return err
	}
	return nil
}

func (r *memAttendanceRepo) FindByUserAndDate(userID uint, date time.Time) (*model.Attendance, error) {
	for _, a := range r.records {
		if a.UserID == userID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAttendanceRepo) FindOpenRecord(userID uint) (*model.Attendance, error) {
	var best *model.Attendance
	for _, a := range r.records {
		if a.UserID != userID || a.CheckIn == nil || a.CheckOut != nil {
			continue
		}
		if best == nil || a.Date.After(best.Date) {
			best = a
		}
	}
	return best, nil
}

func (r *memAttendanceRepo) FindByID(id uint) (*model.Attendance, error) {
	for _, a := range r.records {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memAttendanceRepo) Create(a *model.Attendance) error {
	r.nextID++
	a.ID = r.nextID
	r.records = append(r.records, a)
	return nil
}

func (r *memAttendanceRepo) Update(a *model.Attendance) error {
	for i, existing := range r.records {
		if existing.ID == a.ID {
			r.records[i] = a
		}
	}
	return nil
}

func (r *memAttendanceRepo) CreateEvidence(p *model.AttendancePhoto) error {
	r.evidence = append(r.evidence, p)
	return nil
}

func (r *memAttendanceRepo) EvidenceExists(attendanceID uint, kind string) (bool, error) {
	for _, e := range r.evidence {
		if e.AttendanceID == attendanceID && e.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAttendanceRepo) FindForPeriod(userID uint, start, end time.Time) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, a := range r.records {
		if a.UserID == userID && !a.Date.Before(start) && !a.Date.After(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) FindForCompany(companyID uint, filters attendance.ReportFilters, offset, limit int) ([]model.Attendance, int64, error) {
	var out []model.Attendance
	for _, a := range r.records {
		if a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

type memBlobStore struct {
	blobs map[string][]byte
}

func (s *memBlobStore) Save(path string, data []byte) error {
	if s.blobs == nil {
		s.blobs = map[string][]byte{}
	}
	s.blobs[path] = data
	return nil
}

func (s *memBlobStore) Delete(path string) error {
	delete(s.blobs, path)
	return nil
}

func newTestAttendanceHandler() *AttendanceHandler {
	log := zap.NewNop()
	attacher := attendance.NewAttacher(&memBlobStore{}, log)
	ledger := attendance.NewLedger(&memAttendanceRepo{}, attacher, log)
	return NewAttendanceHandler(ledger)
}

func multipartPhotoRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "selfie.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte{0xff, 0xd8, 0xff, 0xe0}); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	_ = w.WriteField("latitude", "13.7563")
	_ = w.WriteField("longitude", "100.5018")
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func doRequest(h echo.HandlerFunc, req *http.Request, p auth.Principal) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetPrincipal(c, p)
	_ = h(c)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func testPrincipal(role string) auth.Principal {
	companyID := uint(3)
	return auth.Principal{UserID: 7, Email: "emp1@acme.com", CompanyID: &companyID, Role: role}
}

func TestCheckInEndpoint(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	rec := doRequest(h.CheckIn, multipartPhotoRequest(t, "/api/attendance/check-in"), p)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Check-in successful" {
		t.Fatalf("message = %v", body["message"])
	}
	if body["status"] != true {
		t.Fatalf("status = %v", body["status"])
	}
}

func TestCheckInConflictEnvelope(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	rec := doRequest(h.CheckIn, multipartPhotoRequest(t, "/api/attendance/check-in"), p)
	if rec.Code != http.StatusOK {
		t.Fatalf("first check-in status = %d", rec.Code)
	}

	rec = doRequest(h.CheckIn, multipartPhotoRequest(t, "/api/attendance/check-in"), p)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second check-in status = %d, want 422", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Already checked in today" {
		t.Fatalf("message = %v", body["message"])
	}
	if body["status"] != false {
		t.Fatalf("status = %v", body["status"])
	}
}

func TestCheckInRequiresPhoto(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/check-in", nil)
	rec := doRequest(h.CheckIn, req, p)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Photo is required" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestCheckOutWithoutCheckInEnvelope(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	rec := doRequest(h.CheckOut, multipartPhotoRequest(t, "/api/attendance/check-out"), p)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "No active check-in found. Please check in first." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestTodayWithoutRecord(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/today", nil)
	rec := doRequest(h.Today, req, p)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data = %v", body["data"])
	}
	if data["checked_in"] != false {
		t.Fatalf("checked_in = %v", data["checked_in"])
	}
}

func TestCompanyReportForbiddenForEmployee(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/company", nil)
	rec := doRequest(h.CompanyReport, req, p)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Unauthorized" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestCompanyReportAllowedForHR(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleHR)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/company", nil)
	rec := doRequest(h.CompanyReport, req, p)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHistoryRequiresPeriod(t *testing.T) {
	h := newTestAttendanceHandler()
	p := testPrincipal(model.RoleEmployee)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/history", nil)
	rec := doRequest(h.History, req, p)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
