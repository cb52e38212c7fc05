package attendance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/pkg/storage"
)

// Photo is an uploaded evidence image.
type Photo struct {
	Data []byte
	Ext  string // "jpg", "jpeg" or "png"
}

// Coordinates are optional geolocation evidence.
type Coordinates struct {
	Latitude  *float64
	Longitude *float64
}

// ErrDuplicateEvidence is returned when an evidence entry of the same kind
// already exists for the record. At most one photo exists per
// (attendance, kind).
var ErrDuplicateEvidence = apperr.New(apperr.KindConflict, "Evidence already recorded for this event")

// ErrInvalidCoordinates is returned for out-of-range latitude or longitude.
var ErrInvalidCoordinates = apperr.New(apperr.KindValidation, "Coordinates out of range")

// Attacher binds a photo plus optional coordinates to one attendance event.
// The blob is written before the enclosing database transaction commits;
// Discard compensates when that transaction rolls back, so no committed
// transition lacks its evidence and no orphaned blob survives a rollback.
type Attacher struct {
	store storage.Store
	log   *zap.Logger
}

// NewAttacher creates an Attacher writing blobs to store.
func NewAttacher(store storage.Store, log *zap.Logger) *Attacher {
	return &Attacher{store: store, log: log}
}

// ValidateCoordinates checks latitude [-90,90] and longitude [-180,180].
func (a *Attacher) ValidateCoordinates(c Coordinates) error {
	if c.Latitude != nil && (*c.Latitude < -90 || *c.Latitude > 90) {
		return ErrInvalidCoordinates
	}
	if c.Longitude != nil && (*c.Longitude < -180 || *c.Longitude > 180) {
		return ErrInvalidCoordinates
	}
	return nil
}

// StorePhoto writes the blob under the per-user, per-day path convention and
// returns the path.
func (a *Attacher) StorePhoto(userID uint, date time.Time, kind string, photo Photo) (string, error) {
	path := fmt.Sprintf("attendance/%d/%s/%s-%s.%s",
		userID, date.Format("2006-01-02"), kind, uuid.NewString(), photo.Ext)
	if err := a.store.Save(path, photo.Data); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "Failed to store photo", err)
	}
	return path, nil
}

// Attach writes the immutable evidence row for the record inside tx. The
// blob at path must already be stored.
func (a *Attacher) Attach(tx Repository, rec *model.Attendance, kind, path string, c Coordinates) (*model.AttendancePhoto, error) {
	exists, err := tx.EvidenceExists(rec.ID, kind)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to check evidence", err)
	}
	if exists {
		return nil, ErrDuplicateEvidence
	}

	entry := &model.AttendancePhoto{
		AttendanceID: rec.ID,
		Type:         kind,
		PhotoPath:    path,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
	}
	if err := tx.CreateEvidence(entry); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to record evidence", err)
	}
	return entry, nil
}

// Discard removes a stored blob after its enclosing transaction rolled back.
// Failures are logged; the rollback itself already succeeded.
func (a *Attacher) Discard(path string) {
	if path == "" {
		return
	}
	if err := a.store.Delete(path); err != nil {
		a.log.Error("failed to delete orphaned evidence blob",
			zap.String("path", path), zap.Error(err))
	}
}
