package scribeapi

import (
  "bytes"
  "context"
  "encoding/json"
  "io"
  "net/http"
  "sort"
  "strings"
  "time"
  "golang.org/x/oauth2"
  "golang.org/x/oauth2/clientcredentials"

  "github.com/charmixer/scribeui/app"
)

type RegisterRequest struct {
  Name            string `json:"nombre"`
  Email           string `json:"email"`
  Password        string `json:"password"`
  PasswordRetyped string `json:"confirmarPassword"`
}

type UserInfo struct {
  Id    int64  `json:"id"`
  Email string `json:"email"`
  Role  string `json:"role"`
}

type AuthResponse struct {
  Token     string    `json:"token"`
  TokenType string    `json:"tokenType"`
  ExpiresIn int64     `json:"expiresIn"`
  User      *UserInfo `json:"user"`
}

type ErrorResponse struct {
  Message   string `json:"message"`
  Status    int    `json:"status"`
  Timestamp string `json:"timestamp"`
}

type ScribeApiClient struct {
  *http.Client
  RegisterUrl string
}

// NewScribeApiClient uses client credentials to authenticate against the api.
func NewScribeApiClient(config *clientcredentials.Config, registerUrl string) *ScribeApiClient {
  client := config.Client(context.Background())
  return &ScribeApiClient{Client: client, RegisterUrl: registerUrl}
}

func NewScribeApiClientWithHttpClient(client *http.Client, registerUrl string) *ScribeApiClient {
  if client == nil {
    client = http.DefaultClient
  }
  return &ScribeApiClient{Client: client, RegisterUrl: registerUrl}
}

func (client *ScribeApiClient) Register(ctx context.Context, request app.RegistrationRequest) (*app.Registration, error) {
  body, err := json.Marshal(RegisterRequest{
    Name: request.Name,
    Email: request.Email,
    Password: request.Password,
    PasswordRetyped: request.PasswordRetyped,
  })
  if err != nil {
    return nil, &app.RegistrationFailedError{Message: "Could not encode registration", Err: err}
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.RegisterUrl, bytes.NewBuffer(body))
  if err != nil {
    return nil, &app.RegistrationFailedError{Message: "Could not create registration request", Err: err}
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Accept", "application/json")

  response, err := client.Do(req)
  if err != nil {
    return nil, &app.RegistrationFailedError{Message: "Registration service unavailable", Err: err}
  }
  defer response.Body.Close()

  responseData, err := io.ReadAll(response.Body)
  if err != nil {
    return nil, &app.RegistrationFailedError{Status: response.StatusCode, Message: "Could not read registration response", Err: err}
  }

  if response.StatusCode < 200 || response.StatusCode > 299 {
    return nil, &app.RegistrationFailedError{Status: response.StatusCode, Message: errorMessage(response.StatusCode, responseData)}
  }

  var authResponse AuthResponse
  err = json.Unmarshal(responseData, &authResponse)
  if err != nil {
    return nil, &app.RegistrationFailedError{Status: response.StatusCode, Message: "Invalid registration response", Err: err}
  }

  if authResponse.User == nil {
    return nil, &app.RegistrationFailedError{Status: response.StatusCode, Message: "Registration response is missing the user"}
  }

  registration := &app.Registration{
    User: &app.User{
      Id: authResponse.User.Id,
      Email: authResponse.User.Email,
      Name: request.Name,
      Role: authResponse.User.Role,
    },
  }

  if authResponse.Token != "" {
    tokenType := authResponse.TokenType
    if tokenType == "" {
      tokenType = "Bearer"
    }
    registration.Token = &oauth2.Token{
      AccessToken: authResponse.Token,
      TokenType: tokenType,
    }
    if authResponse.ExpiresIn > 0 {
      registration.Token.Expiry = time.Now().Add(time.Duration(authResponse.ExpiresIn) * time.Second)
    }
  }

  return registration, nil
}

// errorMessage understands both error bodies of the api: {"message": ...} and the per field validation map.
func errorMessage(status int, data []byte) string {
  var errorResponse ErrorResponse
  if err := json.Unmarshal(data, &errorResponse); err == nil && errorResponse.Message != "" {
    return errorResponse.Message
  }

  var fieldErrors map[string]string
  if err := json.Unmarshal(data, &fieldErrors); err == nil && len(fieldErrors) > 0 {
    var fields []string
    for k := range fieldErrors {
      fields = append(fields, k)
    }
    sort.Strings(fields)

    var messages []string
    for _, k := range fields {
      messages = append(messages, k + ": " + fieldErrors[k])
    }
    return strings.Join(messages, ", ")
  }

  if text := http.StatusText(status); text != "" {
    return text
  }
  return "Unexpected status"
}
