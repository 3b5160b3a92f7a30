package config

import (
  "strings"
  "time"
  "github.com/spf13/viper"
  "gopkg.in/go-playground/validator.v9"

  "github.com/charmixer/scribeui/validators"
)

const EnvPrefix = "SCRIBEUI"

// Settings is the validated subset of the configuration the server needs to boot.
type Settings struct {
  LogDebug          int           `validate:"min=0,max=1"`
  LogFormat         string        `validate:"omitempty,oneof=text json"`
  PublicPort        string        `validate:"required,numeric"`
  TlsCertPath       string        `validate:"required_with=TlsKeyPath"`
  TlsKeyPath        string        `validate:"required_with=TlsCertPath"`
  SessionAuthKey    string        `validate:"required,notblank,min=32"`
  CsrfAuthKey       string        `validate:"required,notblank,len=32"`
  Secure            bool
  ScribeApiUrl      string        `validate:"required,url"`
  RegisterEndpoint  string        `validate:"required,notblank"`
  ScribeApiTimeout  time.Duration
  ClientId          string
  ClientSecret      string        `validate:"required_with=ClientId"`
  TokenUrl          string        `validate:"omitempty,url"`
  RequiredScopes    []string      `validate:"noblankentries"`
}

func setDefaults() {
  viper.SetDefault("log.debug", 0)
  viper.SetDefault("log.format", "text")

  viper.SetDefault("serve.public.port", "8080")
  viper.SetDefault("serve.secure", true)

  viper.SetDefault("scribeapi.public.url", "http://localhost:8081")
  viper.SetDefault("scribeapi.public.endpoints.register", "/api/auth/register")
  viper.SetDefault("scribeapi.timeout", "10s")
}

// InitConfigurations reads the optional config file at path and binds SCRIBEUI_* environment variables.
// An empty path looks for config.yml in the working directory.
func InitConfigurations(path string) error {
  viper.Reset()
  setDefaults()

  viper.SetEnvPrefix(EnvPrefix)
  viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
  viper.AutomaticEnv()

  if path != "" {
    viper.SetConfigFile(path)
  } else {
    viper.SetConfigName("config")
    viper.SetConfigType("yml")
    viper.AddConfigPath(".")
  }

  err := viper.ReadInConfig()
  if err != nil {
    // Running on environment variables only is fine
    if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
      return nil
    }
    return err
  }
  return nil
}

func Load() (*Settings, error) {
  s := &Settings{
    LogDebug:         GetInt("log.debug"),
    LogFormat:        GetString("log.format"),
    PublicPort:       GetString("serve.public.port"),
    TlsCertPath:      GetString("serve.tls.cert.path"),
    TlsKeyPath:       GetString("serve.tls.key.path"),
    SessionAuthKey:   GetString("session.authKey"),
    CsrfAuthKey:      GetString("csrf.authKey"),
    Secure:           GetBool("serve.secure"),
    ScribeApiUrl:     GetString("scribeapi.public.url"),
    RegisterEndpoint: GetString("scribeapi.public.endpoints.register"),
    ScribeApiTimeout: GetDuration("scribeapi.timeout"),
    ClientId:         GetString("oauth2.client.id"),
    ClientSecret:     GetString("oauth2.client.secret"),
    TokenUrl:         GetString("oauth2.token.url"),
    RequiredScopes:   GetStringSlice("oauth2.scopes.required"),
  }

  if s.RegisterEndpoint != "" && !strings.HasPrefix(s.RegisterEndpoint, "/") {
    s.RegisterEndpoint = "/" + s.RegisterEndpoint
  }

  validate := validator.New()
  err := validators.Register(validate)
  if err != nil {
    return nil, err
  }
  err = validate.Struct(s)
  if err != nil {
    return nil, err
  }
  return s, nil
}

func GetString(key string) string {
  return viper.GetString(key)
}

func GetInt(key string) int {
  return viper.GetInt(key)
}

func GetBool(key string) bool {
  return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
  return viper.GetDuration(key)
}

func GetStringSlice(key string) []string {
  return viper.GetStringSlice(key)
}
