package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SIGA-2025/attendance-service/internal/models"
	"github.com/SIGA-2025/attendance-service/internal/repositories"
)

// mockStore is the shared in-memory state behind the mock repository.
type mockStore struct {
	years       map[models.YearID]*models.Year
	sections    map[models.SectionID]*models.Section
	students    map[models.StudentID]*models.Student
	roles       map[models.UserID][]models.UserRole
	profiles    map[models.UserID]*models.Profile
	assignments map[string]*models.TeacherAssignment
	records     map[models.RecordID]*models.AttendanceRecord
}

func newMockStore() *mockStore {
	return &mockStore{
		years:       make(map[models.YearID]*models.Year),
		sections:    make(map[models.SectionID]*models.Section),
		students:    make(map[models.StudentID]*models.Student),
		roles:       make(map[models.UserID][]models.UserRole),
		profiles:    make(map[models.UserID]*models.Profile),
		assignments: make(map[string]*models.TeacherAssignment),
		records:     make(map[models.RecordID]*models.AttendanceRecord),
	}
}

func assignmentKey(userID models.UserID, sectionID models.SectionID) string {
	return userID.String() + "|" + sectionID.String()
}

type mockRepository struct {
	store *mockStore
}

func newMockRepository() *mockRepository {
	return &mockRepository{store: newMockStore()}
}

func (m *mockRepository) Year() repositories.YearRepository             { return &mockYearRepo{m.store} }
func (m *mockRepository) Section() repositories.SectionRepository       { return &mockSectionRepo{m.store} }
func (m *mockRepository) Student() repositories.StudentRepository       { return &mockStudentRepo{m.store} }
func (m *mockRepository) Role() repositories.RoleRepository             { return &mockRoleRepo{m.store} }
func (m *mockRepository) Profile() repositories.ProfileRepository       { return &mockProfileRepo{m.store} }
func (m *mockRepository) Assignment() repositories.AssignmentRepository { return &mockAssignmentRepo{m.store} }
func (m *mockRepository) Attendance() repositories.AttendanceRepository { return &mockAttendanceRepo{m.store} }
func (m *mockRepository) Dashboard() repositories.DashboardRepository   { return &mockDashboardRepo{m.store} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== seed helpers =====

func (m *mockRepository) seedRoster() (models.YearID, models.SectionID) {
	year := &models.Year{ID: models.NewYearID(), Name: "1er Año", OrderNumber: 1, Active: true}
	m.store.years[year.ID] = year
	section := &models.Section{ID: models.NewSectionID(), YearID: year.ID, Letter: "A", Active: true, Year: year}
	m.store.sections[section.ID] = section
	return year.ID, section.ID
}

func (m *mockRepository) seedStudent(sectionID models.SectionID, code, nombres, apellidos string) *models.Student {
	student := &models.Student{
		ID:          models.NewStudentID(),
		StudentCode: code,
		Nombres:     nombres,
		Apellidos:   apellidos,
		SectionID:   sectionID,
		Active:      true,
	}
	m.store.students[student.ID] = student
	return student
}

func (m *mockRepository) seedUser(userID models.UserID, roles ...models.UserRole) {
	m.store.roles[userID] = roles
}

func (m *mockRepository) seedAssignment(userID models.UserID, sectionID models.SectionID) {
	m.store.assignments[assignmentKey(userID, sectionID)] = &models.TeacherAssignment{
		ID:        models.NewID(),
		UserID:    userID,
		SectionID: sectionID,
		Section:   m.store.sections[sectionID],
	}
}

// ===== YEARS =====

type mockYearRepo struct{ store *mockStore }

func (r *mockYearRepo) Create(ctx context.Context, tx *gorm.DB, year *models.Year) error {
	r.store.years[year.ID] = year
	return nil
}

func (r *mockYearRepo) Update(ctx context.Context, tx *gorm.DB, year *models.Year) error {
	if _, ok := r.store.years[year.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.years[year.ID] = year
	return nil
}

func (r *mockYearRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.YearID) (*models.Year, error) {
	year, ok := r.store.years[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return year, nil
}

func (r *mockYearRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.RosterFilters) ([]*models.Year, error) {
	var out []*models.Year
	for _, y := range r.store.years {
		if !y.Active && !filters.IncludeInactive {
			continue
		}
		out = append(out, y)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (r *mockYearRepo) SetActive(ctx context.Context, tx *gorm.DB, id models.YearID, active bool) error {
	year, ok := r.store.years[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	year.Active = active
	return nil
}

func (r *mockYearRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id models.YearID) (bool, error) {
	_, ok := r.store.years[id]
	return ok, nil
}

// ===== SECTIONS =====

type mockSectionRepo struct{ store *mockStore }

func (r *mockSectionRepo) Create(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	r.store.sections[section.ID] = section
	return nil
}

func (r *mockSectionRepo) Update(ctx context.Context, tx *gorm.DB, section *models.Section) error {
	if _, ok := r.store.sections[section.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.sections[section.ID] = section
	return nil
}

func (r *mockSectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (*models.Section, error) {
	section, ok := r.store.sections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return section, nil
}

func (r *mockSectionRepo) ListByYear(ctx context.Context, tx *gorm.DB, yearID models.YearID, filters repositories.RosterFilters) ([]*models.Section, error) {
	var out []*models.Section
	for _, s := range r.store.sections {
		if s.YearID != yearID {
			continue
		}
		if !s.Active && !filters.IncludeInactive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out, nil
}

func (r *mockSectionRepo) SetActive(ctx context.Context, tx *gorm.DB, id models.SectionID, active bool) error {
	section, ok := r.store.sections[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	section.Active = active
	return nil
}

func (r *mockSectionRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id models.SectionID) (bool, error) {
	_, ok := r.store.sections[id]
	return ok, nil
}

// ===== STUDENTS =====

type mockStudentRepo struct{ store *mockStore }

func (r *mockStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	r.store.students[student.ID] = student
	return nil
}

func (r *mockStudentRepo) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if _, ok := r.store.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.students[student.ID] = student
	return nil
}

func (r *mockStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (*models.Student, error) {
	student, ok := r.store.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (r *mockStudentRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Student, error) {
	for _, s := range r.store.students {
		if s.StudentCode == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockStudentRepo) ListBySection(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, filters repositories.RosterFilters) ([]*models.Student, error) {
	var out []*models.Student
	for _, s := range r.store.students {
		if s.SectionID != sectionID {
			continue
		}
		if !s.Active && !filters.IncludeInactive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Apellidos != out[j].Apellidos {
			return out[i].Apellidos < out[j].Apellidos
		}
		return out[i].Nombres < out[j].Nombres
	})
	return out, nil
}

func (r *mockStudentRepo) IDsBySections(ctx context.Context, tx *gorm.DB, sectionIDs []models.SectionID) ([]models.StudentID, error) {
	set := make(map[models.SectionID]struct{}, len(sectionIDs))
	for _, id := range sectionIDs {
		set[id] = struct{}{}
	}
	var out []models.StudentID
	for _, s := range r.store.students {
		if _, ok := set[s.SectionID]; ok {
			out = append(out, s.ID)
		}
	}
	return out, nil
}

func (r *mockStudentRepo) SetActive(ctx context.Context, tx *gorm.DB, id models.StudentID, active bool) error {
	student, ok := r.store.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.Active = active
	return nil
}

func (r *mockStudentRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id models.StudentID) (bool, error) {
	_, ok := r.store.students[id]
	return ok, nil
}

// ===== ROLES / PROFILES =====

type mockRoleRepo struct{ store *mockStore }

func (r *mockRoleRepo) RolesFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.UserRole, error) {
	return r.store.roles[userID], nil
}

func (r *mockRoleRepo) CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error) {
	var count int64
	for _, roles := range r.store.roles {
		for _, rr := range roles {
			if rr == role {
				count++
			}
		}
	}
	return count, nil
}

type mockProfileRepo struct{ store *mockStore }

func (r *mockProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID models.UserID) (*models.Profile, error) {
	profile, ok := r.store.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (r *mockProfileRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []models.UserID) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, id := range userIDs {
		if p, ok := r.store.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ===== ASSIGNMENTS =====

type mockAssignmentRepo struct{ store *mockStore }

func (r *mockAssignmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assignment *models.TeacherAssignment) error {
	key := assignmentKey(assignment.UserID, assignment.SectionID)
	if _, ok := r.store.assignments[key]; ok {
		return nil
	}
	assignment.Section = r.store.sections[assignment.SectionID]
	r.store.assignments[key] = assignment
	return nil
}

func (r *mockAssignmentRepo) Remove(ctx context.Context, tx *gorm.DB, userID models.UserID, sectionID models.SectionID) error {
	key := assignmentKey(userID, sectionID)
	if _, ok := r.store.assignments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.assignments, key)
	return nil
}

func (r *mockAssignmentRepo) SectionsFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]models.SectionID, error) {
	var out []models.SectionID
	for _, a := range r.store.assignments {
		if a.UserID == userID {
			out = append(out, a.SectionID)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) TeachersFor(ctx context.Context, tx *gorm.DB, sectionID models.SectionID) ([]models.UserID, error) {
	var out []models.UserID
	for _, a := range r.store.assignments {
		if a.SectionID == sectionID {
			out = append(out, a.UserID)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) ListFor(ctx context.Context, tx *gorm.DB, userID models.UserID) ([]*models.TeacherAssignment, error) {
	var out []*models.TeacherAssignment
	for _, a := range r.store.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ===== ATTENDANCE =====

type mockAttendanceRepo struct{ store *mockStore }

func (r *mockAttendanceRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.RecordID) (*models.AttendanceRecord, error) {
	record, ok := r.store.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	record.Student = r.store.students[record.StudentID]
	return record, nil
}

func (r *mockAttendanceRepo) GetByKey(ctx context.Context, tx *gorm.DB, studentID models.StudentID, date time.Time) (*models.AttendanceRecord, error) {
	key := models.DateKey(models.DateOnly(date))
	for _, rec := range r.store.records {
		if rec.StudentID == studentID && models.DateKey(rec.Date) == key {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockAttendanceRepo) Upsert(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	existing, err := r.GetByKey(ctx, tx, record.StudentID, time.Time(record.Date))
	if err == nil {
		record.ID = existing.ID
	}
	r.store.records[record.ID] = record
	return nil
}

func (r *mockAttendanceRepo) Update(ctx context.Context, tx *gorm.DB, record *models.AttendanceRecord) error {
	if _, ok := r.store.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.records[record.ID] = record
	return nil
}

func (r *mockAttendanceRepo) Query(ctx context.Context, tx *gorm.DB, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	statusSet := make(map[models.AttendanceStatus]struct{}, len(filters.Statuses))
	for _, s := range filters.Statuses {
		statusSet[s] = struct{}{}
	}
	from := models.DateKey(models.DateOnly(filters.DateFrom))
	to := models.DateKey(models.DateOnly(filters.DateTo))
	nameQuery := strings.ToLower(strings.TrimSpace(filters.NameQuery))

	var out []*models.AttendanceRecord
	for _, rec := range r.store.records {
		student := r.store.students[rec.StudentID]
		if student == nil || student.SectionID != filters.SectionID {
			continue
		}
		key := models.DateKey(rec.Date)
		if key < from || key > to {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[rec.Status]; !ok {
				continue
			}
		}
		if nameQuery != "" {
			full := strings.ToLower(student.Apellidos + " " + student.Nombres)
			if !strings.Contains(full, nameQuery) {
				continue
			}
		}
		rec.Student = student
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := models.DateKey(out[i].Date), models.DateKey(out[j].Date)
		if di != dj {
			return di > dj
		}
		if out[i].Student.Apellidos != out[j].Student.Apellidos {
			return out[i].Student.Apellidos < out[j].Student.Apellidos
		}
		return out[i].Student.Nombres < out[j].Student.Nombres
	})
	return out, nil
}

func (r *mockAttendanceRepo) ListForStudent(ctx context.Context, tx *gorm.DB, studentID models.StudentID, dateFrom, dateTo time.Time) ([]*models.AttendanceRecord, error) {
	from := models.DateKey(models.DateOnly(dateFrom))
	to := models.DateKey(models.DateOnly(dateTo))
	var out []*models.AttendanceRecord
	for _, rec := range r.store.records {
		if rec.StudentID != studentID {
			continue
		}
		key := models.DateKey(rec.Date)
		if key < from || key > to {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return models.DateKey(out[i].Date) > models.DateKey(out[j].Date)
	})
	return out, nil
}

func (r *mockAttendanceRepo) ListForSectionDate(ctx context.Context, tx *gorm.DB, sectionID models.SectionID, date time.Time) ([]*models.AttendanceRecord, error) {
	key := models.DateKey(models.DateOnly(date))
	var out []*models.AttendanceRecord
	for _, rec := range r.store.records {
		student := r.store.students[rec.StudentID]
		if student == nil || student.SectionID != sectionID {
			continue
		}
		if models.DateKey(rec.Date) != key {
			continue
		}
		rec.Student = student
		out = append(out, rec)
	}
	return out, nil
}

// ===== DASHBOARD =====

type mockDashboardRepo struct{ store *mockStore }

func (r *mockDashboardRepo) CountActiveStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	for _, s := range r.store.students {
		if s.Active {
			count++
		}
	}
	return count, nil
}

func (r *mockDashboardRepo) CountTeachers(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	for _, roles := range r.store.roles {
		for _, role := range roles {
			if role == models.RoleProfesor {
				count++
			}
		}
	}
	return count, nil
}

func (r *mockDashboardRepo) CountAbsencesOn(ctx context.Context, tx *gorm.DB, date time.Time) (int64, error) {
	key := models.DateKey(models.DateOnly(date))
	var count int64
	for _, rec := range r.store.records {
		if models.DateKey(rec.Date) == key && rec.Status.RequiresJustification() {
			count++
		}
	}
	return count, nil
}

func (r *mockDashboardRepo) CountPendingJustifications(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	for _, rec := range r.store.records {
		if rec.Status.RequiresJustification() &&
			rec.JustificationStatus != nil && *rec.JustificationStatus == models.JustificationPendiente {
			count++
		}
	}
	return count, nil
}

func (r *mockDashboardRepo) CountRecordsCreatedBy(ctx context.Context, tx *gorm.DB, userID models.UserID, date time.Time) (int64, error) {
	key := models.DateKey(models.DateOnly(date))
	var count int64
	for _, rec := range r.store.records {
		if rec.CreatedBy == userID && models.DateKey(rec.Date) == key {
			count++
		}
	}
	return count, nil
}

func (r *mockDashboardRepo) CountPendingForStudents(ctx context.Context, tx *gorm.DB, studentIDs []models.StudentID) (int64, error) {
	set := make(map[models.StudentID]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		set[id] = struct{}{}
	}
	var count int64
	for _, rec := range r.store.records {
		if _, ok := set[rec.StudentID]; !ok {
			continue
		}
		if rec.Status.RequiresJustification() &&
			rec.JustificationStatus != nil && *rec.JustificationStatus == models.JustificationPendiente {
			count++
		}
	}
	return count, nil
}
