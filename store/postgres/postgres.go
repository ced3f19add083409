// Package postgres provides a PostgreSQL implementation of payroll.Store
// built on gorm. Schema is managed with AutoMigrate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// =============================================================================
// MODELS
// =============================================================================

type employeeRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"not null;index"`
	HourlyRate string `gorm:"not null;type:numeric(12,4)"`
	IsActive   bool   `gorm:"not null;default:true;index"`
	CreatedAt  time.Time
}

func (employeeRow) TableName() string { return "employees" }

type shiftRow struct {
	ID         uint    `gorm:"primaryKey"`
	EmployeeID string  `gorm:"not null;size:64;uniqueIndex:idx_shift_employee_date"`
	ShiftDate  string  `gorm:"not null;size:10;uniqueIndex:idx_shift_employee_date;index"`
	StartTime  string  `gorm:"not null;size:5"`
	EndTime    string  `gorm:"not null;size:5"`
	LunchStart *string `gorm:"size:5"`
	LunchEnd   *string `gorm:"size:5"`
	TemplateID *string `gorm:"size:64"`
	UpdatedAt  time.Time

	Employee employeeRow `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
}

func (shiftRow) TableName() string { return "shifts" }

type templateRow struct {
	ID         string  `gorm:"primaryKey;size:64"`
	Name       string  `gorm:"not null"`
	StartTime  string  `gorm:"not null;size:5"`
	EndTime    string  `gorm:"not null;size:5"`
	LunchStart *string `gorm:"size:5"`
	LunchEnd   *string `gorm:"size:5"`
	CreatedAt  time.Time
}

func (templateRow) TableName() string { return "shift_templates" }

type settingRow struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"not null"`
}

func (settingRow) TableName() string { return "settings" }

// =============================================================================
// STORE
// =============================================================================

// Store implements payroll.Store on PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New connects to dsn, migrates the schema and seeds default settings.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&employeeRow{}, &templateRow{}, &shiftRow{}, &settingRow{}); err != nil {
		return err
	}

	var seed []settingRow
	for key, value := range payroll.DefaultSettings().ToMap() {
		seed = append(seed, settingRow{Key: key, Value: value})
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ===== Employees =====

func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	var row employeeRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, payroll.ProviderError("get employee", err)
	}
	emp, err := row.toEmployee()
	if err != nil {
		return nil, payroll.ProviderError("get employee", err)
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]payroll.Employee, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var rows []employeeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, payroll.ProviderError("list employees", err)
	}

	employees := make([]payroll.Employee, 0, len(rows))
	for _, row := range rows {
		emp, err := row.toEmployee()
		if err != nil {
			return nil, payroll.ProviderError("list employees", err)
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	row := employeeRow{
		ID:         string(emp.ID),
		Name:       emp.Name,
		HourlyRate: emp.HourlyRate.String(),
		IsActive:   emp.IsActive,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "hourly_rate", "is_active"}),
	}).Create(&row).Error
	return payroll.ProviderError("save employee", err)
}

func (s *Store) DeleteEmployee(ctx context.Context, id payroll.EmployeeID, hard bool) error {
	notFound := &payroll.EmployeeNotFoundError{ID: id}

	if !hard {
		res := s.db.WithContext(ctx).Model(&employeeRow{}).Where("id = ?", string(id)).Update("is_active", false)
		return affected(res, "deactivate employee", notFound)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", string(id)).Delete(&shiftRow{}).Error; err != nil {
			return payroll.ProviderError("delete employee shifts", err)
		}
		return affected(tx.Where("id = ?", string(id)).Delete(&employeeRow{}), "delete employee", notFound)
	})
}

func (r employeeRow) toEmployee() (payroll.Employee, error) {
	rate, err := decimal.NewFromString(r.HourlyRate)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %s: bad hourly_rate %q: %w", r.ID, r.HourlyRate, err)
	}
	return payroll.Employee{
		ID:         payroll.EmployeeID(r.ID),
		Name:       r.Name,
		HourlyRate: rate,
		IsActive:   r.IsActive,
	}, nil
}

// ===== Shifts =====

func (s *Store) ShiftsForEmployee(ctx context.Context, id payroll.EmployeeID, from, to payroll.Date) ([]payroll.Shift, error) {
	var rows []shiftRow
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND shift_date BETWEEN ? AND ?", string(id), from.String(), to.String()).
		Order("shift_date").
		Find(&rows).Error
	if err != nil {
		return nil, payroll.ProviderError("list shifts", err)
	}
	return toShifts(rows)
}

func (s *Store) ShiftsInRange(ctx context.Context, from, to payroll.Date) ([]payroll.Shift, error) {
	var rows []shiftRow
	err := s.db.WithContext(ctx).
		Joins("JOIN employees ON employees.id = shifts.employee_id").
		Where("shifts.shift_date BETWEEN ? AND ?", from.String(), to.String()).
		Order("shifts.shift_date").
		Order("employees.name").
		Find(&rows).Error
	if err != nil {
		return nil, payroll.ProviderError("list shifts", err)
	}
	return toShifts(rows)
}

func (s *Store) SaveShift(ctx context.Context, shift payroll.Shift) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&employeeRow{}).Where("id = ?", string(shift.EmployeeID)).Count(&count).Error; err != nil {
		return payroll.ProviderError("save shift", err)
	}
	if count == 0 {
		return &payroll.EmployeeNotFoundError{ID: shift.EmployeeID}
	}

	lunchStart, lunchEnd := lunchColumns(shift.Lunch)
	row := shiftRow{
		EmployeeID: string(shift.EmployeeID),
		ShiftDate:  shift.Date.String(),
		StartTime:  shift.Start.String(),
		EndTime:    shift.End.String(),
		LunchStart: lunchStart,
		LunchEnd:   lunchEnd,
		TemplateID: optional(string(shift.TemplateID)),
	}
	err := s.db.WithContext(ctx).Omit("Employee").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "shift_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "lunch_start", "lunch_end", "template_id", "updated_at"}),
	}).Create(&row).Error
	return payroll.ProviderError("save shift", err)
}

func (s *Store) DeleteShift(ctx context.Context, id payroll.EmployeeID, date payroll.Date) error {
	res := s.db.WithContext(ctx).Where("employee_id = ? AND shift_date = ?", string(id), date.String()).Delete(&shiftRow{})
	return affected(res, "delete shift", payroll.ErrShiftNotFound)
}

func (s *Store) ClearShifts(ctx context.Context, from, to payroll.Date) (int, error) {
	res := s.db.WithContext(ctx).Where("shift_date BETWEEN ? AND ?", from.String(), to.String()).Delete(&shiftRow{})
	if res.Error != nil {
		return 0, payroll.ProviderError("clear shifts", res.Error)
	}
	return int(res.RowsAffected), nil
}

func toShifts(rows []shiftRow) ([]payroll.Shift, error) {
	shifts := make([]payroll.Shift, 0, len(rows))
	for _, r := range rows {
		shift, err := r.toShift()
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func (r shiftRow) toShift() (payroll.Shift, error) {
	date, err := payroll.ParseDate(r.ShiftDate)
	if err != nil {
		return payroll.Shift{}, err
	}
	start, end, lunch, err := parseInterval(r.StartTime, r.EndTime, r.LunchStart, r.LunchEnd)
	if err != nil {
		return payroll.Shift{}, err
	}
	return payroll.Shift{
		EmployeeID: payroll.EmployeeID(r.EmployeeID),
		Date:       date,
		Start:      start,
		End:        end,
		Lunch:      lunch,
		TemplateID: payroll.TemplateID(deref(r.TemplateID)),
	}, nil
}

// ===== Templates =====

func (s *Store) SaveTemplate(ctx context.Context, t payroll.ShiftTemplate) error {
	lunchStart, lunchEnd := lunchColumns(t.Lunch)
	row := templateRow{
		ID:         string(t.ID),
		Name:       t.Name,
		StartTime:  t.Start.String(),
		EndTime:    t.End.String(),
		LunchStart: lunchStart,
		LunchEnd:   lunchEnd,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "start_time", "end_time", "lunch_start", "lunch_end"}),
	}).Create(&row).Error
	return payroll.ProviderError("save template", err)
}

func (s *Store) GetTemplate(ctx context.Context, id payroll.TemplateID) (*payroll.ShiftTemplate, error) {
	var row templateRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, payroll.ProviderError("get template", err)
	}
	t, err := row.toTemplate()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]payroll.ShiftTemplate, error) {
	var rows []templateRow
	if err := s.db.WithContext(ctx).Order("start_time").Order("name").Find(&rows).Error; err != nil {
		return nil, payroll.ProviderError("list templates", err)
	}

	templates := make([]payroll.ShiftTemplate, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTemplate()
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id payroll.TemplateID) error {
	res := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&templateRow{})
	return affected(res, "delete template", payroll.ErrTemplateNotFound)
}

func (r templateRow) toTemplate() (payroll.ShiftTemplate, error) {
	start, end, lunch, err := parseInterval(r.StartTime, r.EndTime, r.LunchStart, r.LunchEnd)
	if err != nil {
		return payroll.ShiftTemplate{}, err
	}
	return payroll.ShiftTemplate{
		ID:    payroll.TemplateID(r.ID),
		Name:  r.Name,
		Start: start,
		End:   end,
		Lunch: lunch,
	}, nil
}

// ===== Settings =====

func (s *Store) LoadSettings(ctx context.Context) (payroll.Settings, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return payroll.Settings{}, payroll.ProviderError("load settings", err)
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return payroll.SettingsFromMap(values)
}

func (s *Store) SaveSettings(ctx context.Context, settings payroll.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	var rows []settingRow
	for key, value := range settings.ToMap() {
		rows = append(rows, settingRow{Key: key, Value: value})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
	return payroll.ProviderError("save settings", err)
}

// ===== Helpers =====

func affected(res *gorm.DB, op string, notFound error) error {
	if res.Error != nil {
		return payroll.ProviderError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func parseInterval(start, end string, lunchStart, lunchEnd *string) (payroll.TimeOfDay, payroll.TimeOfDay, *payroll.LunchBreak, error) {
	s, err := payroll.ParseTimeOfDay(start)
	if err != nil {
		return 0, 0, nil, err
	}
	e, err := payroll.ParseTimeOfDay(end)
	if err != nil {
		return 0, 0, nil, err
	}
	lunch, err := payroll.ParseLunch(deref(lunchStart), deref(lunchEnd))
	if err != nil {
		return 0, 0, nil, err
	}
	return s, e, lunch, nil
}

func lunchColumns(l *payroll.LunchBreak) (*string, *string) {
	if l == nil {
		return nil, nil
	}
	return optional(l.Start.String()), optional(l.End.String())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ payroll.Store = (*Store)(nil)
