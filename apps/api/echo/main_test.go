package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/notification"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
	"github.com/htpham/tutorhub/core/user"
	emailsvc "github.com/htpham/tutorhub/services/email"
	dummydb "github.com/htpham/tutorhub/storage/database/dummy"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errPermDenied   = httpErr{Error: "permission denied"}
	errNotFoundResp = httpErr{Error: "not found"}
	errDeactivated  = httpErr{Error: "account deactivated"}
	errAuthFailed   = httpErr{Error: "authentication failed"}
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	*server

	conf        *core.Config
	usrRepo     user.Repository
	userSvc     *user.Service
	schoolSvc   *school.Service
	scheduleSvc *schedule.Service
	gradeSvc    *grade.Service
	proj        *projection.Store
}

// setup spins up a full API server on an in-memory store. Each test gets a
// fresh one, so there is no DB state to reset between tests.
func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode: true,
		AppName:  "TutorHub",

		SecretKey:                 []byte("secret"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	scheduleSvc := schedule.NewService(dummydb.NewScheduleRepository(db), dummydb.NewAttendanceRepository(db))
	schoolSvc := school.NewService(
		dummydb.NewStudentRepository(db),
		dummydb.NewClassRepository(db),
		dummydb.NewClassroomRepository(db),
		dummydb.NewSubjectRepository(db),
		scheduleSvc,
	)
	gradeSvc := grade.NewService(
		dummydb.NewPeriodRepository(db),
		dummydb.NewColumnRepository(db),
		dummydb.NewGradeRepository(db),
	)
	userSvc := user.NewService(conf, usrRepo, mailSvc, nopLogger{})
	proj := projection.NewStore(schoolSvc, scheduleSvc, gradeSvc, nopLogger{})
	notificationSvc := notification.NewService(proj, userSvc)

	app := NewServer(&Options{
		DisableReqLogs:  true,
		Conf:            conf,
		Logger:          nopLogger{},
		UserSvc:         userSvc,
		SchoolSvc:       schoolSvc,
		ScheduleSvc:     scheduleSvc,
		GradeSvc:        gradeSvc,
		NotificationSvc: notificationSvc,
		Projection:      proj,
	})

	return &testApp{
		server:      app.(*server),
		conf:        conf,
		usrRepo:     usrRepo,
		userSvc:     userSvc,
		schoolSvc:   schoolSvc,
		scheduleSvc: scheduleSvc,
		gradeSvc:    gradeSvc,
		proj:        proj,
	}
}

func (a *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := a.auth.getUserClaims(usr)
	token, err := a.auth.generateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
