package main

import (
  "errors"
  "net/http"
  "os"
  "golang.org/x/oauth2"
  "golang.org/x/oauth2/clientcredentials"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/sessions"
  "github.com/gin-contrib/sessions/cookie"
  "github.com/gorilla/csrf"
  "github.com/gwatts/gin-adapter"
  "github.com/pborman/getopt"

  "github.com/charmixer/scribeui/app"
  "github.com/charmixer/scribeui/config"
  "github.com/charmixer/scribeui/controllers/credentials"
  "github.com/charmixer/scribeui/flow"
  "github.com/charmixer/scribeui/gateway/scribeapi"
  "github.com/charmixer/scribeui/views"
)

const appName = "scribeui"

var (
  log *logrus.Logger

  appFields logrus.Fields
)

func main() {
  optConfig := getopt.StringLong("config", 'c', "", "Path to config file (default ./config.yml)")
  optHelp := getopt.BoolLong("help", 'h', "Help")
  getopt.Parse()

  if *optHelp {
    getopt.Usage()
    os.Exit(0)
  }

  log = logrus.New()

  err := config.InitConfigurations(*optConfig)
  if err != nil {
    log.Panic(err.Error())
    return
  }

  settings, err := config.Load()
  if err != nil {
    log.Panic(err.Error())
    return
  }

  log = newLogger(settings)
  appFields = logrus.Fields{
    "appname": appName,
    "log.debug": settings.LogDebug,
    "log.format": settings.LogFormat,
  }

  registrar, err := newRegistrar(settings)
  if err != nil {
    log.WithFields(appFields).Panic(err.Error())
    return
  }

  env := &app.Environment{
    Constants: app.DefaultConstants,
    Logger: log,
    Registrar: registrar,
    Users: &app.SessionUserStore{Constants: app.DefaultConstants},
    Submissions: flow.NewTracker(),
    RegisterTimeout: settings.ScribeApiTimeout,
  }
  env.SignIn = &app.DemoSignIn{Env: env}
  env.Notifier = &app.FlashNotifier{Env: env}

  serve(env, settings)
}

// We only have 2 log levels. Things developers care about (debug) and things the user of the app cares about (info)
func newLogger(settings *config.Settings) *logrus.Logger {
  l := logrus.New()
  if settings.LogDebug == 1 {
    l.SetLevel(logrus.DebugLevel)
  } else {
    l.SetLevel(logrus.InfoLevel)
  }
  if settings.LogFormat == "json" {
    l.SetFormatter(&logrus.JSONFormatter{})
  }
  return l
}

func newRegistrar(settings *config.Settings) (app.Registrar, error) {
  registerUrl := settings.ScribeApiUrl + settings.RegisterEndpoint

  // Without a client the api is called anonymously, which is what the registration endpoint allows
  if settings.ClientId == "" {
    return scribeapi.NewScribeApiClientWithHttpClient(&http.Client{}, registerUrl), nil
  }

  if settings.TokenUrl == "" {
    return nil, errors.New("Missing oauth2.token.url for oauth2.client.id " + settings.ClientId)
  }

  scribeApiConfig := &clientcredentials.Config{
    ClientID: settings.ClientId,
    ClientSecret: settings.ClientSecret,
    TokenURL: settings.TokenUrl,
    Scopes: settings.RequiredScopes,
    AuthStyle: oauth2.AuthStyleInHeader,
  }
  return scribeapi.NewScribeApiClient(scribeApiConfig, registerUrl), nil
}

func serve(env *app.Environment, settings *config.Settings) {
  store := cookie.NewStore([]byte(settings.SessionAuthKey))
  // Ref: https://godoc.org/github.com/gin-contrib/sessions#Options
  store.Options(sessions.Options{
    MaxAge: 86400,
    Path: "/",
    Secure: settings.Secure,
    HttpOnly: true,
  })

  // Use CSRF on all forms, not on public files since that is just extra data going over the wire
  adapterCSRF := adapter.Wrap(csrf.Protect([]byte(settings.CsrfAuthKey), csrf.Secure(settings.Secure)))

  r, err := newRouter(env, store, adapterCSRF)
  if err != nil {
    log.WithFields(appFields).Panic(err.Error())
    return
  }

  addr := ":" + settings.PublicPort
  log.WithFields(appFields).WithFields(logrus.Fields{"addr": addr, "tls": settings.TlsCertPath != ""}).Info("Serving")

  if settings.TlsCertPath != "" {
    err = r.RunTLS(addr, settings.TlsCertPath, settings.TlsKeyPath)
  } else {
    err = r.Run(addr)
  }
  if err != nil {
    log.WithFields(appFields).Fatal(err.Error())
  }
}

func newRouter(env *app.Environment, store sessions.Store, csrfProtect gin.HandlerFunc) (*gin.Engine, error) {
  r := gin.New() // Clean gin to take control with logging.
  r.Use(gin.Recovery())

  r.Use(app.RequestId(env))
  r.Use(app.RequestLogger(env, appFields))
  r.Use(sessions.Sessions(env.Constants.SessionStoreKey, store))

  templates, err := views.Templates()
  if err != nil {
    return nil, err
  }
  r.SetHTMLTemplate(templates)

  public, err := views.Public()
  if err != nil {
    return nil, err
  }
  r.StaticFS("/public", http.FS(public))

  // Setup routes to use, this defines log for debug log
  routes := map[string]app.Route{
    credentials.LOGIN_URL:    app.Route{URL: credentials.LOGIN_URL,    LogId: "scribeui://"},
    credentials.REGISTER_URL: app.Route{URL: credentials.REGISTER_URL, LogId: "scribeui://register"},
  }

  ep := r.Group("/")
  if csrfProtect != nil {
    ep.Use(csrfProtect)
  }
  {
    login := routes[credentials.LOGIN_URL]
    ep.GET(login.URL, app.UseRoute(env, login), credentials.ShowLogin(env))
    ep.POST(login.URL, app.UseRoute(env, login), credentials.SubmitLogin(env))

    register := routes[credentials.REGISTER_URL]
    ep.GET(register.URL, app.UseRoute(env, register), credentials.ShowRegistration(env))
    ep.POST(register.URL, app.UseRoute(env, register), credentials.SubmitRegistration(env))
  }

  r.NoRoute(credentials.ShowNotFound(env))

  return r, nil
}
