package credentials

import (
  "net/http"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"

  "github.com/charmixer/scribeui/app"
)

func ShowNotFound(env *app.Environment) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := app.RequestLog(env, c)
    log.WithFields(logrus.Fields{
      "func": "ShowNotFound",
      "path": c.Request.URL.Path,
    }).Debug("No screen for path")

    c.HTML(http.StatusNotFound, "notfound.html", gin.H{
      "title": "Page not found",
      "links": []map[string]string{
        {"href": CSS_CREDENTIALS},
      },
      "path": c.Request.URL.Path,
      "loginUrl": LOGIN_URL,
      "registerUrl": REGISTER_URL,
    })
  }
  return gin.HandlerFunc(fn)
}
