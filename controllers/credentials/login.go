package credentials

import (
  "net/http"
  "github.com/sirupsen/logrus"
  "github.com/gin-gonic/gin"
  "github.com/gorilla/csrf"

  "github.com/charmixer/scribeui/app"
)

type loginForm struct {
  Email    string `form:"email"`
  Password string `form:"password"`
}

func ShowLogin(env *app.Environment) gin.HandlerFunc {
  fn := func(c *gin.Context) {
    // Every visit starts from an empty form
    renderLogin(env, c, loginForm{})
  }
  return gin.HandlerFunc(fn)
}

func SubmitLogin(env *app.Environment) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := app.RequestLog(env, c)
    log = log.WithFields(logrus.Fields{
      "func": "SubmitLogin",
    })

    var form loginForm
    err := c.ShouldBind(&form)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatus(http.StatusBadRequest)
      return
    }

    err = env.SignIn.SignIn(c, app.Credentials{Email: form.Email, Password: form.Password})
    if err != nil {
      log.Debug(err.Error())
    }

    // Stay on the sign in screen with what was typed
    renderLogin(env, c, form)
  }
  return gin.HandlerFunc(fn)
}

func renderLogin(env *app.Environment, c *gin.Context, form loginForm) {
  c.HTML(http.StatusOK, "login.html", gin.H{
    "title": "Sign in",
    "links": []map[string]string{
      {"href": CSS_CREDENTIALS},
    },
    csrf.TemplateTag: csrf.TemplateField(c.Request),
    "notices": env.Notifier.Notices(c),
    "loginUrl": LOGIN_URL,
    "registerUrl": REGISTER_URL,
    "email": form.Email,
    "password": form.Password,
  })
}
