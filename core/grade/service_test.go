package grade

import (
	"context"
	"math"
	"strconv"
	"testing"
)

func fPtr(f float64) *float64 { return &f }

func col(id string, maxScore, weight float64) Column {
	return Column{ID: id, ClassID: "CL1", MaxScore: maxScore, Weight: weight}
}

func score(columnID, studentID string, s *float64) Grade {
	return Grade{ID: "GRD" + columnID + studentID, ColumnID: columnID, StudentID: studentID, Score: s}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name    string
		columns []Column
		grades  []Grade
		want    float64
	}{
		{name: "no columns", want: 0},
		{
			name:    "no grades",
			columns: []Column{col("GC1", 10, 1)},
			want:    0,
		},
		{
			name:    "single full score",
			columns: []Column{col("GC1", 10, 1)},
			grades:  []Grade{score("GC1", "ST1", fPtr(10))},
			want:    10,
		},
		{
			name:    "single half score",
			columns: []Column{col("GC1", 100, 2)},
			grades:  []Grade{score("GC1", "ST1", fPtr(50))},
			want:    5,
		},
		{
			name: "weights matter",
			columns: []Column{
				col("GC1", 10, 1), // 10/10
				col("GC2", 10, 3), // 5/10
			},
			grades: []Grade{
				score("GC1", "ST1", fPtr(10)),
				score("GC2", "ST1", fPtr(5)),
			},
			// (1*1 + 0.5*3) / 4 * 10
			want: 6.25,
		},
		{
			name: "missing score excluded, not zero",
			columns: []Column{
				col("GC1", 10, 1),
				col("GC2", 10, 1),
			},
			grades: []Grade{
				score("GC1", "ST1", fPtr(8)),
				score("GC2", "ST1", nil), // recorded but unscored
			},
			want: 8,
		},
		{
			name:    "other students ignored",
			columns: []Column{col("GC1", 10, 1)},
			grades: []Grade{
				score("GC1", "ST1", fPtr(4)),
				score("GC1", "ST2", fPtr(10)),
			},
			want: 4,
		},
		{
			name:    "all scores missing",
			columns: []Column{col("GC1", 10, 1), col("GC2", 10, 2)},
			grades: []Grade{
				score("GC1", "ST1", nil),
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage("ST1", tt.columns, tt.grades)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WeightedAverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeGradeStore struct {
	columns map[string]Column
	grades  map[string]Grade
	seq     int

	failDeleteGradeID string
}

func newFakeGradeStore() *fakeGradeStore {
	return &fakeGradeStore{
		columns: make(map[string]Column),
		grades:  make(map[string]Grade),
	}
}

func (s *fakeGradeStore) nextID(prefix string) string {
	s.seq++
	return prefix + strconv.Itoa(s.seq)
}

func (s *fakeGradeStore) CreateColumn(_ context.Context, c Column) (Column, error) {
	c.ID = s.nextID("GC")
	s.columns[c.ID] = c
	return c, nil
}

func (s *fakeGradeStore) QueryAllColumns(_ context.Context) ([]Column, error) {
	out := make([]Column, 0, len(s.columns))
	for _, c := range s.columns {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeGradeStore) QueryColumnsByClass(_ context.Context, classID string) ([]Column, error) {
	var out []Column
	for _, c := range s.columns {
		if c.ClassID == classID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeGradeStore) GetColumnByID(_ context.Context, id string) (Column, error) {
	c, ok := s.columns[id]
	if !ok {
		return Column{}, ErrColumnNotFound
	}
	return c, nil
}

func (s *fakeGradeStore) UpdateColumn(_ context.Context, c Column) (Column, error) {
	if _, ok := s.columns[c.ID]; !ok {
		return Column{}, ErrColumnNotFound
	}
	s.columns[c.ID] = c
	return c, nil
}

func (s *fakeGradeStore) DeleteColumn(_ context.Context, id string) error {
	delete(s.columns, id)
	return nil
}

func (s *fakeGradeStore) CreateGrade(_ context.Context, g Grade) (Grade, error) {
	g.ID = s.nextID("GRD")
	s.grades[g.ID] = g
	return g, nil
}

func (s *fakeGradeStore) QueryAllGrades(_ context.Context) ([]Grade, error) {
	out := make([]Grade, 0, len(s.grades))
	for _, g := range s.grades {
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeGradeStore) QueryGradesByColumn(_ context.Context, columnID string) ([]Grade, error) {
	var out []Grade
	for _, g := range s.grades {
		if g.ColumnID == columnID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeGradeStore) GetGrade(_ context.Context, columnID, studentID string) (Grade, error) {
	for _, g := range s.grades {
		if g.ColumnID == columnID && g.StudentID == studentID {
			return g, nil
		}
	}
	return Grade{}, ErrGradeNotFound
}

func (s *fakeGradeStore) UpdateGrade(_ context.Context, g Grade) (Grade, error) {
	if _, ok := s.grades[g.ID]; !ok {
		return Grade{}, ErrGradeNotFound
	}
	s.grades[g.ID] = g
	return g, nil
}

func (s *fakeGradeStore) DeleteGrade(_ context.Context, id string) error {
	if id == s.failDeleteGradeID {
		return ErrGradeNotFound
	}
	delete(s.grades, id)
	return nil
}

func Test_Service_UpsertGrade(t *testing.T) {
	store := newFakeGradeStore()
	svc := NewService(nil, store, store)
	ctx := context.Background()

	column, err := svc.CreateColumn(ctx, NewColumn{Name: "Midterm", ClassID: "CL1", MaxScore: 10, Weight: 1})
	if err != nil {
		t.Fatalf("CreateColumn() failed: %v", err)
	}

	// unknown column is rejected
	if _, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: "GCmissing", StudentID: "ST1"}); err != ErrColumnNotFound {
		t.Errorf("UpsertGrade() error = %v, want %v", err, ErrColumnNotFound)
	}

	// first write creates
	g1, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: "ST1", Score: fPtr(7)})
	if err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}
	if *g1.Score != 7 {
		t.Errorf("Score = %v, want 7", *g1.Score)
	}

	// second write updates the same cell
	g2, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: "ST1", Score: fPtr(9), Notes: "retake"})
	if err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}
	if g2.ID != g1.ID {
		t.Errorf("expected same grade row, got %s and %s", g1.ID, g2.ID)
	}
	if *g2.Score != 9 || g2.Notes != "retake" {
		t.Errorf("got score=%v notes=%q, want 9 %q", *g2.Score, g2.Notes, "retake")
	}
	if len(store.grades) != 1 {
		t.Errorf("grade rows = %d, want 1", len(store.grades))
	}

	// a score can be cleared back to nil
	g3, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: "ST1"})
	if err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}
	if g3.Score != nil {
		t.Errorf("Score = %v, want nil", *g3.Score)
	}
}

func Test_Service_DeleteColumn_cascade(t *testing.T) {
	store := newFakeGradeStore()
	svc := NewService(nil, store, store)
	ctx := context.Background()

	column, err := svc.CreateColumn(ctx, NewColumn{Name: "Midterm", ClassID: "CL1", MaxScore: 10, Weight: 1})
	if err != nil {
		t.Fatalf("CreateColumn() failed: %v", err)
	}
	other, err := svc.CreateColumn(ctx, NewColumn{Name: "Final", ClassID: "CL1", MaxScore: 10, Weight: 2})
	if err != nil {
		t.Fatalf("CreateColumn() failed: %v", err)
	}
	for i, sid := range []string{"ST1", "ST2", "ST3"} {
		if _, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: sid, Score: fPtr(float64(i))}); err != nil {
			t.Fatalf("UpsertGrade() failed: %v", err)
		}
	}
	kept, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: other.ID, StudentID: "ST1", Score: fPtr(5)})
	if err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}

	deleted, err := svc.DeleteColumn(ctx, column.ID)
	if err != nil {
		t.Fatalf("DeleteColumn() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteColumn() = %d, want 3", deleted)
	}
	if _, ok := store.columns[column.ID]; ok {
		t.Error("expected column row deleted")
	}
	if _, ok := store.grades[kept.ID]; !ok {
		t.Error("expected other column's grade kept")
	}
}

func Test_Service_DeleteColumn_partialFailure(t *testing.T) {
	store := newFakeGradeStore()
	svc := NewService(nil, store, store)
	ctx := context.Background()

	column, err := svc.CreateColumn(ctx, NewColumn{Name: "Midterm", ClassID: "CL1", MaxScore: 10, Weight: 1})
	if err != nil {
		t.Fatalf("CreateColumn() failed: %v", err)
	}
	var gradeIDs []string
	for _, sid := range []string{"ST1", "ST2"} {
		g, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: sid, Score: fPtr(5)})
		if err != nil {
			t.Fatalf("UpsertGrade() failed: %v", err)
		}
		gradeIDs = append(gradeIDs, g.ID)
	}
	store.failDeleteGradeID = gradeIDs[1]

	deleted, err := svc.DeleteColumn(ctx, column.ID)
	if err == nil {
		t.Fatal("DeleteColumn() expected an error")
	}
	if deleted >= 2 {
		t.Errorf("DeleteColumn() = %d, want < 2", deleted)
	}
	// the column row survives a failed cascade and so does the failing grade
	if _, ok := store.columns[column.ID]; !ok {
		t.Error("expected column row kept")
	}
	if _, ok := store.grades[gradeIDs[1]]; !ok {
		t.Error("expected failing grade row kept")
	}
}

func Test_Service_ClassAverages(t *testing.T) {
	store := newFakeGradeStore()
	svc := NewService(nil, store, store)
	ctx := context.Background()

	column, err := svc.CreateColumn(ctx, NewColumn{Name: "Midterm", ClassID: "CL1", MaxScore: 10, Weight: 1})
	if err != nil {
		t.Fatalf("CreateColumn() failed: %v", err)
	}
	if _, err := svc.UpsertGrade(ctx, NewGrade{ColumnID: column.ID, StudentID: "ST1", Score: fPtr(8)}); err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}

	avgs, err := svc.ClassAverages(ctx, "CL1", []string{"ST1", "ST2"})
	if err != nil {
		t.Fatalf("ClassAverages() failed: %v", err)
	}
	want := map[string]float64{"ST1": 8, "ST2": 0}
	if len(avgs) != 2 {
		t.Fatalf("len(avgs) = %d, want 2", len(avgs))
	}
	for _, a := range avgs {
		if math.Abs(a.Average-want[a.StudentID]) > 1e-9 {
			t.Errorf("average for %s = %v, want %v", a.StudentID, a.Average, want[a.StudentID])
		}
	}
}
