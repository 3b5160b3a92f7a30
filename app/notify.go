package app

import (
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/sessions"
)

const NoticesFlashKey = "notices"

// Notifier shows short, non blocking messages to the user.
type Notifier interface {
  Notify(c *gin.Context, message string) error

  // Notices returns and consumes the messages queued for the current browser.
  Notices(c *gin.Context) []string
}

// FlashNotifier queues messages as session flashes. They survive a redirect and are shown once.
type FlashNotifier struct {
  Env *Environment // Used for logging, the standard logger if nil
}

func (n *FlashNotifier) Notify(c *gin.Context, message string) error {
  session := sessions.Default(c)
  session.AddFlash(message, NoticesFlashKey)
  return session.Save()
}

func (n *FlashNotifier) Notices(c *gin.Context) []string {
  session := sessions.Default(c)
  flashes := session.Flashes(NoticesFlashKey)
  if len(flashes) <= 0 {
    return nil
  }

  var notices []string
  for _, f := range flashes {
    if s, ok := f.(string); ok {
      notices = append(notices, s)
    }
  }
  // Flashes are removed on read, persist that
  err := session.Save()
  if err != nil {
    log := logrus.NewEntry(logrus.StandardLogger())
    if n.Env != nil {
      log = RequestLog(n.Env, c)
    }
    log.WithFields(logrus.Fields{"func": "FlashNotifier.Notices"}).Debug(err.Error())
  }
  return notices
}
