package app

import (
  "errors"
  "net"
  "net/http"
  "strings"
)

type IpData struct {
  Ip   string
  Port string
}

func GetRequestIpData(r *http.Request) (IpData, error) {
  ip, port, err := net.SplitHostPort(r.RemoteAddr)
  if err != nil {
    return IpData{}, err
  }

  userIp := net.ParseIP(ip)
  if userIp == nil {
    return IpData{}, errors.New("Invalid remote address: " + r.RemoteAddr)
  }

  return IpData{Ip: userIp.String(), Port: port}, nil
}

// GetForwardedForIpData reads the client entry (left most) of X-Forwarded-For. No header is not an error.
func GetForwardedForIpData(r *http.Request) (IpData, error) {
  header := r.Header.Get("X-Forwarded-For")
  if header == "" {
    return IpData{}, nil
  }

  client := strings.TrimSpace(strings.Split(header, ",")[0])

  ip, port, err := net.SplitHostPort(client)
  if err != nil {
    // Most proxies only forward the ip
    ip = client
    port = ""
  }

  forwardedIp := net.ParseIP(ip)
  if forwardedIp == nil {
    return IpData{}, errors.New("Invalid X-Forwarded-For: " + header)
  }

  return IpData{Ip: forwardedIp.String(), Port: port}, nil
}
