package attendance

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/model"
)

func TestValidateCoordinates(t *testing.T) {
	a := NewAttacher(newFakeStore(), zap.NewNop())

	valid := []Coordinates{
		{},
		{Latitude: floatPtr(0), Longitude: floatPtr(0)},
		{Latitude: floatPtr(-90), Longitude: floatPtr(-180)},
		{Latitude: floatPtr(90), Longitude: floatPtr(180)},
		{Latitude: floatPtr(13.75)},
	}
	for i, c := range valid {
		if err := a.ValidateCoordinates(c); err != nil {
			t.Fatalf("valid case %d rejected: %v", i, err)
		}
	}

	invalid := []Coordinates{
		{Latitude: floatPtr(90.1)},
		{Latitude: floatPtr(-90.1)},
		{Longitude: floatPtr(180.1)},
		{Longitude: floatPtr(-180.1)},
	}
	for i, c := range invalid {
		if err := a.ValidateCoordinates(c); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("invalid case %d accepted: %v", i, err)
		}
	}
}

func TestStorePhotoPathConvention(t *testing.T) {
	store := newFakeStore()
	a := NewAttacher(store, zap.NewNop())

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	path, err := a.StorePhoto(7, date, model.PhotoCheckIn, Photo{Data: []byte("x"), Ext: "png"})
	if err != nil {
		t.Fatalf("store photo: %v", err)
	}
	if !strings.HasPrefix(path, "attendance/7/2025-06-02/check_in-") {
		t.Fatalf("unexpected path: %s", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("path should carry the extension: %s", path)
	}
	if _, ok := store.blobs[path]; !ok {
		t.Fatal("blob not stored at returned path")
	}
}

func TestStorePhotoFailure(t *testing.T) {
	store := newFakeStore()
	store.failSave = true
	a := NewAttacher(store, zap.NewNop())

	_, err := a.StorePhoto(7, time.Now(), model.PhotoCheckIn, Photo{Data: []byte("x"), Ext: "jpg"})
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestAttachRejectsDuplicateEvidence(t *testing.T) {
	repo := &fakeRepo{}
	a := NewAttacher(newFakeStore(), zap.NewNop())

	rec := &model.Attendance{ID: 1, UserID: 7, CompanyID: 3}
	repo.records = append(repo.records, *rec)

	if _, err := a.Attach(repo, rec, model.PhotoCheckIn, "p1.jpg", Coordinates{}); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	_, err := a.Attach(repo, rec, model.PhotoCheckIn, "p2.jpg", Coordinates{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected duplicate-evidence conflict, got %v", err)
	}

	// A different kind on the same record is fine.
	if _, err := a.Attach(repo, rec, model.PhotoCheckOut, "p3.jpg", Coordinates{}); err != nil {
		t.Fatalf("check-out evidence on same record: %v", err)
	}
}
