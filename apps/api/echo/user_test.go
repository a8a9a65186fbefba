package echoapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/htpham/tutorhub/core/user"
	emailsvc "github.com/htpham/tutorhub/services/email"
	testutil "github.com/htpham/tutorhub/tests"
)

func Test_userAPI_login(t *testing.T) {
	a := setup(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "G0od.Pa55word!", user.RoleTeacher, true)
	_ = testutil.CreateUser(t, a.usrRepo, "N Dog", "ndog@test.vn", "G0od.Pa55word!", user.RoleTeacher, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "lol", Password: "whatever"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "who@test.vn", Password: "whatever"}),
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: teacher.Email, Password: "nope"}),
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, LoginRequest{Email: "ndog@test.vn", Password: "G0od.Pa55word!"}),
			wantData: marchallObj(t, errDeactivated),
		},
		{
			name: "success", wantCode: http.StatusOK,
			body: marchallObj(t, LoginRequest{Email: teacher.Email, Password: "G0od.Pa55word!"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			a.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_refreshToken(t *testing.T) {
	a := setup(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)
	naughty := testutil.CreateUser(t, a.usrRepo, "N Dog", "ndog@test.vn", "", user.RoleTeacher, false)

	// a token whose original issue time predates the refresh window
	staleIat := time.Now().Add(-2 * a.conf.Server.JWTRefreshExpirationDelta).Unix()
	staleClaims := a.auth.getUserClaims(teacher, staleIat)
	staleToken, err := a.auth.generateToken(staleClaims)
	if err != nil {
		t.Fatalf("generateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "inactive user not allowed", token: a.getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDeactivated),
		},
		{
			name: "refresh period expired", token: staleToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "token refreshed", token: a.getToken(t, teacher), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			a.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_resetPassword(t *testing.T) {
	a := setup(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)
	successData := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	type extraTest struct {
		emailSent bool
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: "who@test.vn"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: teacher.Email}),
			wantData: successData, extra: extraTest{emailSent: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentBefore := len(emailsvc.SentMessages)

			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				sent := len(emailsvc.SentMessages) > sentBefore
				if sent != extra.emailSent {
					t.Errorf("failed! emailSent = %v; want %v", sent, extra.emailSent)
				}
				if sent {
					msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
					if !strings.Contains(msg.TextContent, a.conf.AppName) {
						t.Errorf("failed! reset email does not mention %q: %v", a.conf.AppName, msg.TextContent)
					}
				}
			}
		})
	}
}

func Test_userAPI_confirmPasswordReset(t *testing.T) {
	a := setup(t)

	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "Old.Pa55word!", user.RoleTeacher, true)

	t.Run("invalid uid or token", func(t *testing.T) {
		body := marchallObj(t, user.ResetUserPassword{
			UID: "lol", Token: "hahaha", Password: "G0od.Pa55word!", PasswordConfirm: "G0od.Pa55word!",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		}, rec)
	})

	t.Run("full reset flow", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset",
			marchallObj(t, PasswordResetRequest{Email: teacher.Email}))
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if len(emailsvc.SentMessages) == 0 {
			t.Fatal("failed! no reset email sent")
		}

		// pull the uid/token pair out of the emailed link
		linkRegex := regexp.MustCompile(`uid=([^&\s]+)&token=([^&\s]+)`)
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		match := linkRegex.FindStringSubmatch(msg.TextContent)
		if match == nil {
			t.Fatalf("failed! no reset link in email: %v", msg.TextContent)
		}

		body := marchallObj(t, user.ResetUserPassword{
			UID: match[1], Token: match[2], Password: "G0od.Pa55word!", PasswordConfirm: "G0od.Pa55word!",
		})
		req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
		}, rec)

		// old password no longer works; new one does
		req, rec = newRequest(http.MethodPost, "/v1/users/login",
			marchallObj(t, LoginRequest{Email: teacher.Email, Password: "Old.Pa55word!"}))
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! old password still accepted; code = %v", rec.Code)
		}
		req, rec = newRequest(http.MethodPost, "/v1/users/login",
			marchallObj(t, LoginRequest{Email: teacher.Email, Password: "G0od.Pa55word!"}))
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! new password rejected; code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})
}

func Test_userAPI_create(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	manager := testutil.CreateUser(t, a.usrRepo, "Manager", "manager@test.vn", "", user.RoleManager, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)

	newUsr := func(email, role string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "New Guy",
			Email:           email,
			Role:            role,
			Password:        "G0od.Pa55word!",
			PasswordConfirm: "G0od.Pa55word!",
		})
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", token: a.getToken(t, manager), body: newUsr("new@test.vn", user.RoleTeacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "teachers locked out", token: a.getToken(t, teacher), body: newUsr("new@test.vn", user.RoleTeacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "existing email rejected", token: a.getToken(t, admin), body: newUsr(teacher.Email, user.RoleTeacher),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{name: "created", token: a.getToken(t, admin), body: newUsr("new@test.vn", user.RoleTeacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			a.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.ID == "" {
					t.Error("failed! user has no ID")
				}
				if respData.Email != "new@test.vn" {
					t.Errorf("failed! email = %v", respData.Email)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_query(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	manager := testutil.CreateUser(t, a.usrRepo, "Manager", "manager@test.vn", "", user.RoleManager, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teachers locked out", token: a.getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "managers can list", token: a.getToken(t, manager),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, manager, teacher),
		},
		{
			name: "admins can list", token: a.getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, manager, teacher),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_retrieve(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)
	other := testutil.CreateUser(t, a.usrRepo, "Other", "other@test.vn", "", user.RoleTeacher, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/" + teacher.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "own profile", path: "/v1/users/" + teacher.ID, token: a.getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher),
		},
		{
			name: "other profile forbidden for non-admin", path: "/v1/users/" + other.ID, token: a.getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "admin can read anyone", path: "/v1/users/" + teacher.ID, token: a.getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher),
		},
		{
			name: "unknown user", path: "/v1/users/lol", token: a.getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_update(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	manager := testutil.CreateUser(t, a.usrRepo, "Manager", "manager@test.vn", "", user.RoleManager, true)

	bPtr := func(b bool) *bool { return &b }

	tests := []httpTest{
		{
			name: "non-admin cannot change role", path: "/v1/users/" + manager.ID, token: a.getToken(t, manager),
			body:     marchallObj(t, user.UpdateUser{Role: user.RoleAdmin}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "non-admin cannot deactivate", path: "/v1/users/" + manager.ID, token: a.getToken(t, manager),
			body:     marchallObj(t, user.UpdateUser{IsActive: bPtr(false)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "own name change allowed", path: "/v1/users/" + manager.ID, token: a.getToken(t, manager),
			body:     marchallObj(t, user.UpdateUser{Name: "Renamed"}),
			wantCode: http.StatusOK,
		},
		{
			name: "admin promotes manager", path: "/v1/users/" + manager.ID, token: a.getToken(t, admin),
			body:     marchallObj(t, user.UpdateUser{Role: user.RoleAdmin}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			a.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userAPI_destroy(t *testing.T) {
	a := setup(t)

	admin := testutil.CreateUser(t, a.usrRepo, "Admin", "admin@test.vn", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, a.usrRepo, "Teacher", "teacher@test.vn", "", user.RoleTeacher, true)
	adminToken := a.getToken(t, admin)

	t.Run("self-delete forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		a.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}, rec)
	})

	t.Run("admin deletes user", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+teacher.ID, adminToken)
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+teacher.ID, adminToken)
		a.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! deleted user still retrievable; code = %v", rec.Code)
		}
	})
}
