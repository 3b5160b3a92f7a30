package credentials

import (
  "net/http"
  "net/http/httptest"
  "net/url"
  "strings"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

func TestShowLogin_RendersEmptyForm(t *testing.T) {
  env, _ := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  res := b.get("/")
  require.Equal(t, http.StatusOK, res.Code)

  values := inputValues(t, res.Body.String())
  assert.Equal(t, map[string]string{"email": "", "password": ""}, values)
  assert.Contains(t, res.Body.String(), `type="password"`)
  assert.Contains(t, res.Body.String(), `href="/register"`)
  assert.Empty(t, notices(t, res.Body.String()))
}

func TestSubmitLogin_StaysOnScreen(t *testing.T) {
  env, users := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  res := b.post("/", url.Values{"email": {"ana@example.com"}, "password": {"x"}})
  require.Equal(t, http.StatusOK, res.Code)
  assert.Empty(t, res.Header().Get("Location"))

  assert.Equal(t, []string{"Signing in (demo mode) as: ana@example.com"}, notices(t, res.Body.String()))
  assert.Equal(t, map[string]string{"email": "ana@example.com", "password": "x"}, inputValues(t, res.Body.String()))
  assert.EqualValues(t, 0, users.saves)

  // The notice is shown once
  res = b.get("/")
  assert.Empty(t, notices(t, res.Body.String()))
}

func TestSubmitLogin_RenderedValuesEqualTyped(t *testing.T) {
  typed := []string{
    "",
    "a",
    "ana@example.com",
    "with spaces  ",
    `quotes " and ' here`,
    "<script>alert(1)</script>",
    "a+b&c=d",
    "ünïcödé ✓",
  }

  env, _ := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  for _, s := range typed {
    t.Run(s, func(t *testing.T) {
      res := b.post("/", url.Values{"email": {s}, "password": {s + "!"}})
      require.Equal(t, http.StatusOK, res.Code)

      values := inputValues(t, res.Body.String())
      assert.Equal(t, s, values["email"])
      assert.Equal(t, s + "!", values["password"])
    })
  }
}

func TestSubmitLogin_MalformedBody(t *testing.T) {
  env, _ := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("%zz"))
  req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

  res := b.do(req)
  assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestShowNotFound(t *testing.T) {
  env, _ := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  res := b.get("/does/not/exist")
  require.Equal(t, http.StatusNotFound, res.Code)
  assert.Contains(t, res.Body.String(), "Page not found")
  assert.Contains(t, res.Body.String(), `href="/"`)
  assert.Contains(t, res.Body.String(), `href="/register"`)
}

func TestNavigation_ReentryStartsEmpty(t *testing.T) {
  env, _ := newTestEnv(&fakeRegistrar{})
  b := newBrowser(t, newTestEngine(t, env))

  // Type something on both screens without any successful submit
  b.post("/", url.Values{"email": {"ana@example.com"}, "password": {"x"}})

  res := b.get("/register")
  require.Equal(t, http.StatusOK, res.Code)
  assert.Equal(t, map[string]string{"display-name": "", "email": "", "password": "", "password_retyped": ""}, inputValues(t, res.Body.String()))
  assert.Contains(t, res.Body.String(), `href="/"`)

  res = b.get("/")
  require.Equal(t, http.StatusOK, res.Code)
  assert.Equal(t, map[string]string{"email": "", "password": ""}, inputValues(t, res.Body.String()))
}
