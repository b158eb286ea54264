package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/nachoo07/sistemaInterno-sub000/apps/api/echo"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
	emailsvc "github.com/nachoo07/sistemaInterno-sub000/services/email"
	inmemdb "github.com/nachoo07/sistemaInterno-sub000/storage/database/inmem"
	testutil "github.com/nachoo07/sistemaInterno-sub000/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type studentStore interface {
	student.Repository
	CreateStudent(ctx context.Context, st student.Student) (student.Student, error)
}

type testApp struct {
	*Server
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	shares     share.Repository
	students   studentStore
	settings   setting.Repository
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	db := inmemdb.Open()
	app := &testApp{
		conf:     conf,
		shares:   inmemdb.NewShareRepository(db),
		students: inmemdb.NewStudentRepository(db),
		settings: inmemdb.NewSettingRepository(db),
	}
	testutil.SetTariff(t, app.settings, conf.Billing.TariffKey, 30000)

	shareSvc, err := share.NewService(app.shares, app.students, app.settings, emailsvc.NewConsoleServiceMock(conf), logger, conf)
	if err != nil {
		t.Fatalf("share.NewService() failed: %v", err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	share.InitValidators(validate, translator)

	app.logger, app.validate, app.translator = logger, validate, translator
	app.Server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		ShareSvc:   shareSvc,
		Validate:   validate,
		Translator: translator,
	})
	return app
}

func (app *testApp) getShare(t *testing.T, id string) share.Share {
	sh, err := app.shares.GetShare(context.Background(), id)
	if err != nil {
		t.Fatalf("GetShare() failed: %v", err)
	}
	return sh
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
	wantData []byte // not checked when nil
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

func getToken(t *testing.T, conf *core.Config, isAdmin bool) string {
	token, err := GenerateToken(conf, NewClaims(conf, "tester", isAdmin))
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
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
