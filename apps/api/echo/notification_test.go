package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/htpham/tutorhub/core/notification"
	"github.com/htpham/tutorhub/core/user"
	testutil "github.com/htpham/tutorhub/tests"
)

func Test_notificationAPI_dayNotice(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	teacher1 := testutil.CreateUser(t, a.usrRepo, "Minh Tran", "minh@test.vn", "", user.RoleTeacher, true)
	teacher2 := testutil.CreateUser(t, a.usrRepo, "Thu Le", "thu@test.vn", "", user.RoleTeacher, true)
	adminToken := a.getToken(t, admin)
	teacherToken := a.getToken(t, teacher1)

	day := sunday().AddDays(1)
	cl1 := seedClass(t, a, teacher1.ID)
	cl2 := seedClass(t, a, teacher2.ID)
	_ = seedSchedule(t, a, cl1.ID, teacher1.ID, day, "")
	_ = seedSchedule(t, a, cl2.ID, teacher2.ID, day, "")
	if err := a.proj.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh(): %v", err)
	}

	body := marchallObj(t, notification.GenerateNotice{Date: day, Format: notification.FormatFormal})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/notifications/day-notice", body)
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("required fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/day-notice", adminToken)
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"date":   "this field is required",
				"format": "this field is required",
			}),
		}, rec)
	})

	t.Run("invalid format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/day-notice", adminToken,
			marchallObj(t, notification.GenerateNotice{Date: day, Format: "fancy"}))
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"format": "format must be one of [formal simple]"}),
		}, rec)
	})

	t.Run("staff gets the whole day", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/day-notice", adminToken, body)
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var notice notification.Notice
		if err := json.Unmarshal(rec.Body.Bytes(), &notice); err != nil {
			t.Fatalf("unmarshalling notice: %v", err)
		}
		if notice.Sessions != 2 {
			t.Errorf("Sessions = %d; want 2", notice.Sessions)
		}
		for _, want := range []string{"MONDAY", teacher1.Name, teacher2.Name, "• Sessions: 2"} {
			if !strings.Contains(notice.Text, want) {
				t.Errorf("notice missing %q:\n%v", want, notice.Text)
			}
		}
	})

	t.Run("teachers only get their own sessions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/day-notice", teacherToken, body)
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var notice notification.Notice
		if err := json.Unmarshal(rec.Body.Bytes(), &notice); err != nil {
			t.Fatalf("unmarshalling notice: %v", err)
		}
		if notice.Sessions != 1 {
			t.Errorf("Sessions = %d; want 1", notice.Sessions)
		}
		if strings.Contains(notice.Text, teacher2.Name) {
			t.Errorf("notice includes another teacher's session:\n%v", notice.Text)
		}
	})
}
