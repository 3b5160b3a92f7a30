package app

import (
  "strings"
  "time"
  "net/http"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gofrs/uuid"

  "github.com/charmixer/scribeui/flow"
)

type EnvironmentConstants struct {
  RequestIdKey string
  LogKey       string

  SessionStoreKey  string // Name of the cookie session
  SessionUserKey   string // Current user, written on successful registration
  SessionTokenKey  string // Access token returned alongside the current user
  SessionFlowIdKey string // Per browser id used to serialize form submissions
}

var DefaultConstants = &EnvironmentConstants{
  RequestIdKey: "RequestId",
  LogKey:       "log",

  SessionStoreKey:  "scribeui",
  SessionUserKey:   "user",
  SessionTokenKey:  "token",
  SessionFlowIdKey: "flow",
}

type Environment struct {
  Constants *EnvironmentConstants

  Logger *logrus.Logger

  Registrar Registrar
  SignIn    SignInCollaborator
  Users     UserStore
  Notifier  Notifier

  Submissions     *flow.Tracker
  RegisterTimeout time.Duration

  NewId func() (uuid.UUID, error) // Defaults to uuid.NewV4
}

func (env *Environment) newId() (uuid.UUID, error) {
  if env.NewId != nil {
    return env.NewId()
  }
  return uuid.NewV4()
}

func RequestLogger(env *Environment, appFields logrus.Fields) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    // Start timer
    start := time.Now()
    path := c.Request.URL.Path
    raw := c.Request.URL.RawQuery

    var requestId string = c.GetString(env.Constants.RequestIdKey)
    requestLog := env.Logger.WithFields(appFields).WithFields(logrus.Fields{
      "request.id": requestId,
    })
    c.Set(env.Constants.LogKey, requestLog)

    c.Next()

    // Stop timer
    latency := time.Since(start)

    ipData, err := GetRequestIpData(c.Request)
    if err != nil {
      requestLog.WithFields(logrus.Fields{
        "func": "RequestLogger",
      }).Debug(err.Error())
    }

    forwardedForIpData, err := GetForwardedForIpData(c.Request)
    if err != nil {
      requestLog.WithFields(logrus.Fields{
        "func": "RequestLogger",
      }).Debug(err.Error())
    }

    statusCode := c.Writer.Status()

    // Successful public asset hits are just noise when debugging
    if strings.HasPrefix(path, "/public/") && ( statusCode == http.StatusOK || statusCode == http.StatusNotModified ) {
      return
    }

    var fullpath string = path
    if raw != "" {
      fullpath = path + "?" + raw
    }

    requestLog.WithFields(logrus.Fields{
      "latency": latency,
      "forwarded_for.ip": forwardedForIpData.Ip,
      "forwarded_for.port": forwardedForIpData.Port,
      "ip": ipData.Ip,
      "port": ipData.Port,
      "method": c.Request.Method,
      "status": statusCode,
      "error": c.Errors.ByType(gin.ErrorTypePrivate).String(),
      "body_size": c.Writer.Size(),
      "path": fullpath,
    }).Info("")
  }
  return gin.HandlerFunc(fn)
}

func RequestId(env *Environment) gin.HandlerFunc {
  return func(c *gin.Context) {
    // Check for incoming header, use it if exists
    requestId := c.Request.Header.Get("X-Request-Id")

    if requestId == "" {
      uuid4, err := env.newId()
      if err != nil {
        logger := env.Logger
        if logger == nil {
          logger = logrus.StandardLogger()
        }
        logger.WithFields(logrus.Fields{"func": "RequestId", "path": c.Request.URL.Path}).Error("Unable to create request id: " + err.Error())
      } else {
        requestId = uuid4.String()
      }
    }

    c.Set(env.Constants.RequestIdKey, requestId)
    c.Writer.Header().Set("X-Request-Id", requestId)
    c.Next()
  }
}

// RequestLog returns the request scoped log entry set by RequestLogger.
func RequestLog(env *Environment, c *gin.Context) *logrus.Entry {
  if v, exists := c.Get(env.Constants.LogKey); exists {
    if log, ok := v.(*logrus.Entry); ok {
      return log
    }
  }
  if env.Logger == nil {
    return logrus.NewEntry(logrus.StandardLogger())
  }
  return logrus.NewEntry(env.Logger)
}

type Route struct {
  URL   string
  LogId string
}

// UseRoute tags the request log with the route, eg. "scribeui://register".
func UseRoute(env *Environment, route Route) gin.HandlerFunc {
  return func(c *gin.Context) {
    log := RequestLog(env, c)
    c.Set(env.Constants.LogKey, log.WithFields(logrus.Fields{"route": route.LogId}))
    c.Next()
  }
}
