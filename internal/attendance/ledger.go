// Package attendance owns the per-employee, per-day presence record and its
// transition rules. A record moves Absent -> CheckedIn -> CheckedOut; both
// transitions are one-way and each one commits atomically with its evidence
// entry.
package attendance

import (
	"time"

	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/apperr"
	"github.com/BheemChand1/attendance-backend/internal/auth"
	"github.com/BheemChand1/attendance-backend/internal/model"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

// Stable transition failures.
var (
	ErrAlreadyCheckedIn = apperr.New(apperr.KindConflict, "Already checked in today")
	ErrNoOpenCheckIn    = apperr.New(apperr.KindNotFound, "No active check-in found. Please check in first.")
	ErrInvalidPeriod    = apperr.New(apperr.KindValidation, "Invalid month or year")
)

// ReportFilters narrow the company attendance report.
type ReportFilters struct {
	Date   *time.Time // defaults to today
	Status string     // "", present, absent or half_day
}

// ReportPage is one page of the company report.
type ReportPage struct {
	Records  []model.Attendance `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"current_page"`
	PerPage  int                `json:"per_page"`
	LastPage int                `json:"last_page"`
}

// Repository is the tenant-scoped persistence boundary for attendance rows.
// InTransaction hands callers a transactional view; everything written
// through it commits or rolls back as one unit.
type Repository interface {
	InTransaction(fn func(tx Repository) error) error
	// FindByUserAndDate returns the record for (user, date) or nil.
	FindByUserAndDate(userID uint, date time.Time) (*model.Attendance, error)
	// FindOpenRecord returns the most recent record with a check-in and no
	// check-out, ordered by date desc then check-in desc, or nil. It is not
	// restricted to today so overnight shifts resolve to the correct record.
	FindOpenRecord(userID uint) (*model.Attendance, error)
	// FindByID reloads a record with its evidence.
	FindByID(id uint) (*model.Attendance, error)
	Create(a *model.Attendance) error
	Update(a *model.Attendance) error
	CreateEvidence(p *model.AttendancePhoto) error
	EvidenceExists(attendanceID uint, kind string) (bool, error)
	// FindForPeriod returns the user's records with date in [start, end],
	// newest first, evidence preloaded.
	FindForPeriod(userID uint, start, end time.Time) ([]model.Attendance, error)
	// FindForCompany returns one page of company records plus the total.
	FindForCompany(companyID uint, filters ReportFilters, offset, limit int) ([]model.Attendance, int64, error)
}

// Ledger performs attendance state transitions.
type Ledger struct {
	repo     Repository
	attacher *Attacher
	log      *zap.Logger
	now      func() time.Time
}

// NewLedger creates a Ledger.
func NewLedger(repo Repository, attacher *Attacher, log *zap.Logger) *Ledger {
	return &Ledger{repo: repo, attacher: attacher, log: log, now: time.Now}
}

func (l *Ledger) today() time.Time {
	return dateOf(l.now())
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CheckIn records the principal's arrival for today, atomically with its
// check-in evidence. A second check-in on the same date fails with a
// conflict and leaves the existing record untouched.
func (l *Ledger) CheckIn(p auth.Principal, photo Photo, coords Coordinates) (*model.Attendance, error) {
	if p.CompanyID == nil {
		return nil, apperr.New(apperr.KindForbidden, "Unauthorized")
	}
	if err := auth.Authorize(p, auth.ActionCheckIn, *p.CompanyID); err != nil {
		return nil, err
	}
	if err := l.attacher.ValidateCoordinates(coords); err != nil {
		return nil, err
	}

	now := l.now()
	today := l.today()

	// Fail fast before touching storage.
	existing, err := l.repo.FindByUserAndDate(p.UserID, today)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to load attendance", err)
	}
	if existing != nil && existing.CheckIn != nil {
		prometheus.RecordError("already_checked_in")
		return nil, ErrAlreadyCheckedIn
	}

	// Blob first; the database commit is the commit point. On rollback the
	// blob is discarded so no orphaned evidence survives.
	path, err := l.attacher.StorePhoto(p.UserID, today, model.PhotoCheckIn, photo)
	if err != nil {
		return nil, err
	}

	var rec *model.Attendance
	err = l.repo.InTransaction(func(tx Repository) error {
		cur, err := tx.FindByUserAndDate(p.UserID, today)
		if err != nil {
			return apperr.Wrap(apperr.KindPersistence, "Failed to load attendance", err)
		}
		if cur != nil && cur.CheckIn != nil {
			return ErrAlreadyCheckedIn
		}

		if cur == nil {
			cur = &model.Attendance{
				CompanyID: *p.CompanyID,
				UserID:    p.UserID,
				Date:      today,
				CheckIn:   &now,
				Status:    model.AttendancePresent,
			}
			if err := tx.Create(cur); err != nil {
				return apperr.Wrap(apperr.KindPersistence, "Failed to create attendance", err)
			}
		} else {
			cur.CheckIn = &now
			cur.Status = model.AttendancePresent
			if err := tx.Update(cur); err != nil {
				return apperr.Wrap(apperr.KindPersistence, "Failed to update attendance", err)
			}
		}

		if _, err := l.attacher.Attach(tx, cur, model.PhotoCheckIn, path, coords); err != nil {
			return err
		}
		rec = cur
		return nil
	})
	if err != nil {
		l.attacher.Discard(path)
		if apperr.Is(err, apperr.KindConflict) {
			prometheus.RecordError("already_checked_in")
		}
		return nil, err
	}

	l.log.Info("checked in",
		zap.Uint("user_id", p.UserID),
		zap.Uint("company_id", *p.CompanyID),
		zap.Time("check_in", now))

	return l.reload(rec)
}

// CheckOut closes the principal's most recent open record, atomically with
// its check-out evidence. The lookup is not restricted to today's date: an
// overnight shift whose check-in was yesterday resolves to yesterday's
// record. Resolution is strictly by recency of check-in among open records.
func (l *Ledger) CheckOut(p auth.Principal, photo Photo, coords Coordinates) (*model.Attendance, error) {
	if p.CompanyID == nil {
		return nil, apperr.New(apperr.KindForbidden, "Unauthorized")
	}
	if err := auth.Authorize(p, auth.ActionCheckOut, *p.CompanyID); err != nil {
		return nil, err
	}
	if err := l.attacher.ValidateCoordinates(coords); err != nil {
		return nil, err
	}

	now := l.now()
	today := l.today()

	open, err := l.repo.FindOpenRecord(p.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to load attendance", err)
	}
	if open == nil {
		prometheus.RecordError("no_open_check_in")
		return nil, ErrNoOpenCheckIn
	}

	// Evidence is stored under today's date even when the record being
	// closed is from a previous day.
	path, err := l.attacher.StorePhoto(p.UserID, today, model.PhotoCheckOut, photo)
	if err != nil {
		return nil, err
	}

	var rec *model.Attendance
	err = l.repo.InTransaction(func(tx Repository) error {
		cur, err := tx.FindOpenRecord(p.UserID)
		if err != nil {
			return apperr.Wrap(apperr.KindPersistence, "Failed to load attendance", err)
		}
		if cur == nil {
			return ErrNoOpenCheckIn
		}

		cur.CheckOut = &now
		if err := tx.Update(cur); err != nil {
			return apperr.Wrap(apperr.KindPersistence, "Failed to update attendance", err)
		}

		if _, err := l.attacher.Attach(tx, cur, model.PhotoCheckOut, path, coords); err != nil {
			return err
		}
		rec = cur
		return nil
	})
	if err != nil {
		l.attacher.Discard(path)
		return nil, err
	}

	l.log.Info("checked out",
		zap.Uint("user_id", p.UserID),
		zap.Uint("attendance_id", rec.ID),
		zap.Time("check_out", now))

	return l.reload(rec)
}

// TodayStatus returns today's record with evidence, or nil when the
// principal has not checked in today.
func (l *Ledger) TodayStatus(p auth.Principal) (*model.Attendance, error) {
	if p.CompanyID == nil {
		return nil, apperr.New(apperr.KindForbidden, "Unauthorized")
	}
	if err := auth.Authorize(p, auth.ActionViewOwnStatus, *p.CompanyID); err != nil {
		return nil, err
	}

	rec, err := l.repo.FindByUserAndDate(p.UserID, l.today())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to load attendance", err)
	}
	if rec == nil {
		return nil, nil
	}
	return l.reload(rec)
}

// History returns the principal's records for the given calendar month,
// newest first. Month must be 1-12 and year 2020-2100.
func (l *Ledger) History(p auth.Principal, month, year int) ([]model.Attendance, error) {
	if p.CompanyID == nil {
		return nil, apperr.New(apperr.KindForbidden, "Unauthorized")
	}
	if err := auth.Authorize(p, auth.ActionViewOwnHistory, *p.CompanyID); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 || year < 2020 || year > 2100 {
		return nil, ErrInvalidPeriod
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	records, err := l.repo.FindForPeriod(p.UserID, start, end)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to load attendance history", err)
	}
	return records, nil
}

// CompanyReport returns one page of the tenant's attendance, restricted to
// company admins and HR. The date filter defaults to today.
func (l *Ledger) CompanyReport(p auth.Principal, filters ReportFilters, page, perPage int) (*ReportPage, error) {
	if p.CompanyID == nil {
		return nil, apperr.New(apperr.KindForbidden, "Unauthorized")
	}
	if err := auth.Authorize(p, auth.ActionViewCompanyReport, *p.CompanyID); err != nil {
		prometheus.RecordError("forbidden")
		return nil, err
	}

	switch filters.Status {
	case "", model.AttendancePresent, model.AttendanceAbsent, model.AttendanceHalfDay:
	default:
		return nil, apperr.New(apperr.KindValidation, "Invalid status filter")
	}

	if filters.Date == nil {
		today := l.today()
		filters.Date = &today
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	records, total, err := l.repo.FindForCompany(*p.CompanyID, filters, (page-1)*perPage, perPage)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "Failed to load company attendance", err)
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &ReportPage{
		Records:  records,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}, nil
}

// reload refreshes a record with its evidence attached; falls back to the
// in-memory record when the reload fails.
func (l *Ledger) reload(rec *model.Attendance) (*model.Attendance, error) {
	fresh, err := l.repo.FindByID(rec.ID)
	if err != nil || fresh == nil {
		return rec, nil
	}
	return fresh, nil
}
