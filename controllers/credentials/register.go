package credentials

import (
  "context"
  "errors"
  "net/http"
  "strings"
  "github.com/sirupsen/logrus"
  "github.com/gofrs/uuid"
  "github.com/gin-gonic/gin"
  "github.com/gorilla/csrf"

  "github.com/charmixer/scribeui/app"
  "github.com/charmixer/scribeui/flow"
)

type registrationForm struct {
  Name            string `form:"display-name"`
  Email           string `form:"email"`
  Password        string `form:"password"`
  PasswordRetyped string `form:"password_retyped"`
}

func ShowRegistration(env *app.Environment) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := app.RequestLog(env, c)
    log = log.WithFields(logrus.Fields{
      "func": "ShowRegistration",
    })

    // Submits are serialized per flow id, so it must exist before the first submit
    _, err := app.FlowId(env, c)
    if err != nil {
      log.Debug(err.Error())
    }

    renderRegistration(env, c, registrationForm{})
  }
  return gin.HandlerFunc(fn)
}

func SubmitRegistration(env *app.Environment) gin.HandlerFunc {
  fn := func(c *gin.Context) {

    log := app.RequestLog(env, c)
    log = log.WithFields(logrus.Fields{
      "func": "SubmitRegistration",
    })

    var form registrationForm
    err := c.ShouldBind(&form)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatus(http.StatusBadRequest)
      return
    }

    // A browser that never loaded the form gets its flow id here, so its first submits are not
    // deduplicated against each other. The csrf cookie is handed out by the same GET.
    flowId, err := app.FlowId(env, c)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatus(http.StatusInternalServerError)
      return
    }
    log = log.WithFields(logrus.Fields{"flow.id": flowId})

    // The call is not cancelled if the browser goes away, only its result is dropped.
    ctx := context.WithoutCancel(c.Request.Context())
    if env.RegisterTimeout > 0 {
      var cancel context.CancelFunc
      ctx, cancel = context.WithTimeout(ctx, env.RegisterTimeout)
      defer cancel()
    }

    request := app.RegistrationRequest{
      Name: form.Name,
      Email: form.Email,
      Password: form.Password,
      PasswordRetyped: form.PasswordRetyped,
    }

    outcome := env.Submissions.Do(ctx, flowKey(flowId), fingerprint(request), func(ctx context.Context) (interface{}, error) {
      registration, err := env.Registrar.Register(ctx, request)
      if err != nil {
        return nil, err
      }
      return registration, nil
    })

    if !outcome.Leader {
      log.Debug("Joined outstanding registration")
    }

    if c.Request.Context().Err() != nil {
      log.WithFields(logrus.Fields{"error": outcome.Err}).Debug("Client went away, discarding registration result")
      c.Abort()
      return
    }

    if errors.Is(outcome.Err, flow.ErrInProgress) {
      log.WithFields(logrus.Fields{"email": form.Email}).Debug(outcome.Err.Error())

      err = env.Notifier.Notify(c, "Registration already in progress")
      if err != nil {
        log.Debug(err.Error())
      }

      renderRegistration(env, c, form)
      return
    }

    if outcome.Err != nil {
      message := app.RegistrationFailureMessage(outcome.Err)
      log.WithFields(logrus.Fields{"email": form.Email}).Debug(outcome.Err.Error())

      err = env.Notifier.Notify(c, "Registration failed: " + message)
      if err != nil {
        log.Debug(err.Error())
      }

      // Keep everything that was typed so the user can retry
      renderRegistration(env, c, form)
      return
    }

    registration, ok := outcome.Result.(*app.Registration)
    if !ok || registration == nil {
      log.Debug("Registrar returned no registration")
      c.AbortWithStatus(http.StatusInternalServerError)
      return
    }

    // Every response answering the submit carries the user, followers included, since each one replaces the session cookie.
    err = env.Users.SaveCurrentUser(c, registration)
    if err != nil {
      log.Debug(err.Error())
      c.AbortWithStatus(http.StatusInternalServerError)
      return
    }

    err = env.Notifier.Notify(c, "Account created: " + registration.User.Name)
    if err != nil {
      log.Debug(err.Error())
    }

    log.WithFields(logrus.Fields{"id": registration.User.Id, "redirect_to": LOGIN_URL}).Debug("Redirecting")
    c.Redirect(http.StatusFound, LOGIN_URL)
    c.Abort()
  }
  return gin.HandlerFunc(fn)
}

func renderRegistration(env *app.Environment, c *gin.Context, form registrationForm) {
  var submitting bool
  if flowId := app.PeekFlowId(env, c); flowId != "" {
    submitting = env.Submissions.State(flowKey(flowId)) == flow.Submitting
  }

  c.HTML(http.StatusOK, "register.html", gin.H{
    "title": "Create account",
    "links": []map[string]string{
      {"href": CSS_CREDENTIALS},
    },
    csrf.TemplateTag: csrf.TemplateField(c.Request),
    "notices": env.Notifier.Notices(c),
    "loginUrl": LOGIN_URL,
    "registerUrl": REGISTER_URL,
    "submitting": submitting,
    "displayName": form.Name,
    "email": form.Email,
    "password": form.Password,
    "passwordRetyped": form.PasswordRetyped,
  })
}

func flowKey(flowId string) string {
  return flowId + ":" + REGISTER_FLOW
}

// fingerprint identifies the submitted values, so only identical submits share a call.
func fingerprint(request app.RegistrationRequest) string {
  values := strings.Join([]string{request.Name, request.Email, request.Password, request.PasswordRetyped}, "\x00")
  return uuid.NewV5(uuid.NamespaceOID, values).String()
}
