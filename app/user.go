package app

import (
  "context"
  "encoding/gob"
  "errors"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/sessions"
  "golang.org/x/oauth2"
)

func init() {
  // Required to keep them in the cookie session
  gob.Register(&User{})
  gob.Register(&oauth2.Token{})
}

type User struct {
  Id    int64
  Email string
  Name  string
  Role  string
}

type RegistrationRequest struct {
  Name            string
  Email           string
  Password        string
  PasswordRetyped string
}

// Registration is what a successful registration hands back: the new identity and its access token.
type Registration struct {
  User  *User
  Token *oauth2.Token
}

type Registrar interface {
  Register(ctx context.Context, request RegistrationRequest) (*Registration, error)
}

// RegistrationFailedError is any rejection from a Registrar, whatever the cause.
type RegistrationFailedError struct {
  Status  int    // HTTP status from the backend, 0 when the request never got an answer
  Message string // Safe to show to the user
  Err     error
}

func (e *RegistrationFailedError) Error() string {
  if e.Err != nil {
    return "registration failed: " + e.Message + ": " + e.Err.Error()
  }
  return "registration failed: " + e.Message
}

func (e *RegistrationFailedError) Unwrap() error {
  return e.Err
}

// RegistrationFailureMessage returns the message to show the user for a failed registration.
func RegistrationFailureMessage(err error) string {
  var failed *RegistrationFailedError
  if errors.As(err, &failed) && failed.Message != "" {
    return failed.Message
  }
  return err.Error()
}

type UserStore interface {
  SaveCurrentUser(c *gin.Context, registration *Registration) error
  CurrentUser(c *gin.Context) *User
}

// SessionUserStore keeps the current user in the cookie session of the browser.
type SessionUserStore struct {
  Constants *EnvironmentConstants
}

func (s *SessionUserStore) SaveCurrentUser(c *gin.Context, registration *Registration) error {
  if registration == nil || registration.User == nil {
    return errors.New("Missing user in registration")
  }

  session := sessions.Default(c)
  session.Set(s.Constants.SessionUserKey, registration.User)
  if registration.Token != nil {
    session.Set(s.Constants.SessionTokenKey, registration.Token)
  }
  return session.Save()
}

func (s *SessionUserStore) CurrentUser(c *gin.Context) *User {
  session := sessions.Default(c)
  v := session.Get(s.Constants.SessionUserKey)
  if user, ok := v.(*User); ok {
    return user
  }
  return nil
}

// FlowId returns the id identifying this browser's form submissions, creating it on first use.
func FlowId(env *Environment, c *gin.Context) (string, error) {
  session := sessions.Default(c)
  if v, ok := session.Get(env.Constants.SessionFlowIdKey).(string); ok && v != "" {
    return v, nil
  }

  uuid4, err := env.newId()
  if err != nil {
    return "", err
  }
  id := uuid4.String()

  session.Set(env.Constants.SessionFlowIdKey, id)
  err = session.Save()
  if err != nil {
    return "", err
  }
  return id, nil
}

// PeekFlowId returns the flow id of the browser without creating one. Empty if there is none yet.
func PeekFlowId(env *Environment, c *gin.Context) string {
  session := sessions.Default(c)
  if v, ok := session.Get(env.Constants.SessionFlowIdKey).(string); ok {
    return v
  }
  return ""
}
