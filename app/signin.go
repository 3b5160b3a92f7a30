package app

import (
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
)

type Credentials struct {
  Email    string
  Password string
}

type SignInCollaborator interface {
  SignIn(c *gin.Context, credentials Credentials) error
}

// DemoSignIn does not authenticate anyone. It logs the attempt and tells the user who they tried to sign in as.
type DemoSignIn struct {
  Env *Environment
}

func (d *DemoSignIn) SignIn(c *gin.Context, credentials Credentials) error {
  log := RequestLog(d.Env, c).WithFields(logrus.Fields{
    "func": "DemoSignIn",
  })

  // Never log the password
  log.WithFields(logrus.Fields{"email": credentials.Email}).Info("Sign in submitted")

  return d.Env.Notifier.Notify(c, "Signing in (demo mode) as: " + credentials.Email)
}
