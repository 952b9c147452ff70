package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	. "github.com/ifcet/aula/apps/api/echo"
	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/contact"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/library"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
	"github.com/ifcet/aula/services/email"
	"github.com/ifcet/aula/services/logger"
	"github.com/ifcet/aula/storage/database/inmem"
	"github.com/ifcet/aula/storage/fixtures"
	"github.com/ifcet/aula/storage/kv"
)

var (
	app      Server
	sessions *kv.Memory
	stRepo   student.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.Conf.Server.DisableReqLogs = true

	logger := logsvc.NewRollbarLogger(zap.NewNop(), core.Conf)
	logger.Enable(false)

	// set up storage
	set, err := fixtures.Load("")
	if err != nil {
		fmt.Printf("fixtures.Load(): %v", err)
		os.Exit(1)
	}
	db := inmemdb.Open()
	stRepo = inmemdb.NewStudentRepository(db)
	crRepo := inmemdb.NewCourseRepository(db)
	if _, err = fixtures.Seed(context.Background(), set.Aula, stRepo, crRepo); err != nil {
		fmt.Printf("fixtures.Seed(): %v", err)
		os.Exit(1)
	}
	sessions = kv.NewMemory(time.Hour)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(logger)
	stSvc := student.NewService(stRepo)

	// set up server
	app = NewServer(
		"", /* addr */
		make(chan os.Signal, 1),
		&Deps{
			Logger:     logger,
			Sessions:   sessions,
			Portal:     session.NewPortal(stSvc, logger),
			StudentSvc: stSvc,
			CourseSvc:  course.NewService(crRepo),
			BlogSvc:    blog.NewService(blog.NewStaticSource(set.Blog.Posts, set.Blog.Categories), 3),
			Library:    library.NewCatalog(set.Books),
			ContactSvc: contact.NewService(mailSvc),
		},
	)

	os.Exit(m.Run())
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

// login signs `username` in through the API and returns the response.
func login(t *testing.T, username, password string) LoginResponse {
	body := marchallObj(t, LoginRequest{Username: username, Password: password})
	req, rec := newRequest(http.MethodPost, "/v1/aula/login", body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

// getToken signs a token for `username` without going through the login flow,
// so no portal values are persisted under its namespace.
func getToken(t *testing.T, username string) string {
	st, err := stRepo.GetStudentByUsername(context.Background(), username)
	require.NoError(t, err)
	token, err := GenerateToken(GetSessionClaims(st.Session(), NewNamespace()))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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

func runHTTPTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHome(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), core.Conf.AppName)
}
