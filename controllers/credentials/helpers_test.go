package credentials

import (
  "context"
  "io"
  "net/http"
  "net/http/httptest"
  "net/url"
  "strings"
  "sync"
  "sync/atomic"
  "testing"

  "github.com/gin-contrib/sessions"
  "github.com/gin-contrib/sessions/cookie"
  "github.com/gin-gonic/gin"
  "github.com/sirupsen/logrus"
  "github.com/stretchr/testify/require"
  "golang.org/x/net/html"

  "github.com/charmixer/scribeui/app"
  "github.com/charmixer/scribeui/flow"
  "github.com/charmixer/scribeui/views"
)

// fakeRegistrar implements app.Registrar for testing.
type fakeRegistrar struct {
  registration *app.Registration
  err          error

  // Called with the context of the call before answering, if set.
  onCall func(ctx context.Context)

  calls    int32
  mu       sync.Mutex
  requests []app.RegistrationRequest
}

func (f *fakeRegistrar) Register(ctx context.Context, request app.RegistrationRequest) (*app.Registration, error) {
  atomic.AddInt32(&f.calls, 1)
  f.mu.Lock()
  f.requests = append(f.requests, request)
  f.mu.Unlock()

  if f.onCall != nil {
    f.onCall(ctx)
  }
  return f.registration, f.err
}

// recordingUserStore wraps the session store and counts writes.
type recordingUserStore struct {
  app.SessionUserStore
  saves int32
}

func (s *recordingUserStore) SaveCurrentUser(c *gin.Context, registration *app.Registration) error {
  atomic.AddInt32(&s.saves, 1)
  return s.SessionUserStore.SaveCurrentUser(c, registration)
}

func newTestEnv(registrar app.Registrar) (*app.Environment, *recordingUserStore) {
  logger := logrus.New()
  logger.SetOutput(io.Discard)

  users := &recordingUserStore{SessionUserStore: app.SessionUserStore{Constants: app.DefaultConstants}}
  env := &app.Environment{
    Constants: app.DefaultConstants,
    Logger: logger,
    Registrar: registrar,
    Users: users,
    Submissions: flow.NewTracker(),
  }
  env.SignIn = &app.DemoSignIn{Env: env}
  env.Notifier = &app.FlashNotifier{Env: env}
  return env, users
}

func newTestEngine(t *testing.T, env *app.Environment) *gin.Engine {
  gin.SetMode(gin.TestMode)

  r := gin.New()
  r.Use(app.RequestId(env))
  r.Use(app.RequestLogger(env, nil))
  r.Use(sessions.Sessions(env.Constants.SessionStoreKey, cookie.NewStore([]byte("test-session-authentication-key!"))))

  templates, err := views.Templates()
  require.NoError(t, err)
  r.SetHTMLTemplate(templates)

  r.GET(LOGIN_URL, ShowLogin(env))
  r.POST(LOGIN_URL, SubmitLogin(env))
  r.GET(REGISTER_URL, ShowRegistration(env))
  r.POST(REGISTER_URL, SubmitRegistration(env))
  r.NoRoute(ShowNotFound(env))

  r.GET("/whoami", func(c *gin.Context) {
    user := env.Users.CurrentUser(c)
    if user == nil {
      c.Status(http.StatusNoContent)
      return
    }
    c.JSON(http.StatusOK, user)
  })
  return r
}

// browser keeps the cookies between requests like a real one would.
type browser struct {
  t       *testing.T
  r       *gin.Engine
  mu      sync.Mutex
  cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
  return &browser{t: t, r: r, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
  b.mu.Lock()
  for _, c := range b.cookies {
    req.AddCookie(c)
  }
  b.mu.Unlock()

  rec := httptest.NewRecorder()
  b.r.ServeHTTP(rec, req)

  b.mu.Lock()
  for _, c := range rec.Result().Cookies() {
    b.cookies[c.Name] = c // last one written wins
  }
  b.mu.Unlock()
  return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
  return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
  return b.do(newPost(path, values))
}

func newPost(path string, values url.Values) *http.Request {
  req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
  req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
  return req
}

// inputValues returns the value attribute of every input by name, as a browser would read it.
func inputValues(t *testing.T, body string) map[string]string {
  doc, err := html.Parse(strings.NewReader(body))
  require.NoError(t, err)

  values := make(map[string]string)
  var walk func(n *html.Node)
  walk = func(n *html.Node) {
    if n.Type == html.ElementNode && n.Data == "input" {
      var name, value string
      for _, a := range n.Attr {
        switch a.Key {
        case "name":
          name = a.Val
        case "value":
          value = a.Val
        }
      }
      if name != "" {
        values[name] = value
      }
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
      walk(c)
    }
  }
  walk(doc)
  return values
}

// notices returns the text of the rendered notifications.
func notices(t *testing.T, body string) []string {
  doc, err := html.Parse(strings.NewReader(body))
  require.NoError(t, err)

  var found []string
  var walk func(n *html.Node)
  walk = func(n *html.Node) {
    if n.Type == html.ElementNode && n.Data == "div" {
      for _, a := range n.Attr {
        if a.Key == "class" && a.Val == "notice" && n.FirstChild != nil {
          found = append(found, n.FirstChild.Data)
        }
      }
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
      walk(c)
    }
  }
  walk(doc)
  return found
}

func registrationValues() url.Values {
  return url.Values{
    "display-name": {"Ana"},
    "email": {"ana@example.com"},
    "password": {"x"},
    "password_retyped": {"x"},
  }
}
