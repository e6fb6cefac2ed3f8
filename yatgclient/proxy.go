package yatgclient

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/gotd/td/telegram/dcs"
	"golang.org/x/net/proxy"
)

const defaultSOCKS5Port = 1080

// NewProxyResolver builds a DC resolver from a proxy URL: socks5://,
// socks5h:// or an MTProto link such as https://t.me/proxy?server=..&port=..&secret=..
// or tg://proxy?....
func NewProxyResolver(proxyURL string, log yalogger.Logger) (dcs.Resolver, yaerrors.Error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "failed to parse proxy url", log)
	}

	switch u.Scheme {
	case "socks5", "socks5h":
		socks5, yaerr := NewSOCKS5WithParseURL(proxyURL, log)
		if yaerr != nil {
			return nil, yaerr
		}

		return socks5.GetResolver(log)
	default:
		mtproto, yaerr := NewMTProtoWithParseURL(proxyURL, log)
		if yaerr != nil {
			return nil, yaerr
		}

		return mtproto.GetResolver(log)
	}
}

type SOCKS5 struct {
	Host     string
	Port     uint16
	Username *string
	Password *string
}

func NewSOCKS5WithParseURL(proxyURL string, log yalogger.Logger) (*SOCKS5, yaerrors.Error) {
	socks5 := SOCKS5{}

	if err := socks5.ParseURL(proxyURL, log); err != nil {
		return nil, err.WrapWithLog("failed to create socks5 proxy from url", log)
	}

	return &socks5, nil
}

func (s *SOCKS5) String() string {
	if s.Username != nil {
		return "socks5://" + *s.Username + ":***@" + s.GetFullAddress()
	}

	return "socks5://" + s.GetFullAddress()
}

func (s *SOCKS5) GetFullAddress() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
}

func (s *SOCKS5) GetAuth() *proxy.Auth {
	if s.Username == nil || s.Password == nil {
		return nil
	}

	return &proxy.Auth{User: *s.Username, Password: *s.Password}
}

func (s *SOCKS5) ParseURL(proxyURL string, log yalogger.Logger) yaerrors.Error {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "failed to parse proxy url", log)
	}

	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return yaerrors.FromStringWithLog(
			http.StatusBadRequest,
			fmt.Sprintf("unsupported proxy scheme %q (want socks5/socks5h)", u.Scheme),
			log,
		)
	}

	port := defaultSOCKS5Port

	if raw := u.Port(); raw != "" {
		if port, err = parsePort(raw); err != nil {
			return yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "invalid proxy port", log)
		}
	}

	s.Host = u.Hostname()
	s.Port = uint16(port)
	s.Username, s.Password = nil, nil

	if u.User != nil {
		user := u.User.Username()
		s.Username = &user

		if pass, ok := u.User.Password(); ok {
			s.Password = &pass
		}
	}

	return nil
}

func (s *SOCKS5) GetResolver(log yalogger.Logger) (dcs.Resolver, yaerrors.Error) {
	dialer, err := proxy.SOCKS5("tcp", s.GetFullAddress(), s.GetAuth(), proxy.Direct)
	if err != nil {
		return nil, yaerrors.FromErrorWithLog(http.StatusInternalServerError, err, "failed to create SOCKS5 proxy", log)
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, yaerrors.FromStringWithLog(
			http.StatusInternalServerError,
			"SOCKS5 dialer does not support contexts",
			log,
		)
	}

	return dcs.Plain(dcs.PlainOptions{Dial: contextDialer.DialContext}), nil
}

type MTProto struct {
	Host   string
	Port   uint16
	Secret string
}

func NewMTProtoWithParseURL(proxyURL string, log yalogger.Logger) (*MTProto, yaerrors.Error) {
	mtproto := MTProto{}

	if err := mtproto.ParseURL(proxyURL, log); err != nil {
		return nil, err.WrapWithLog("failed to create mtproto proxy from url", log)
	}

	return &mtproto, nil
}

func (m *MTProto) String() string {
	return fmt.Sprintf("https://t.me/proxy?server=%s&port=%d&secret=%s", m.Host, m.Port, m.Secret)
}

func (m *MTProto) GetFullAddress() string {
	return net.JoinHostPort(m.Host, strconv.Itoa(int(m.Port)))
}

func (m *MTProto) ParseURL(proxyURL string, log yalogger.Logger) yaerrors.Error {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "failed to parse url for mtproto", log)
	}

	query := u.Query()

	host, rawPort, secret := query.Get("server"), query.Get("port"), query.Get("secret")

	switch {
	case host == "":
		return yaerrors.FromStringWithLog(http.StatusBadRequest, "mtproto proxy url has no server", log)
	case rawPort == "":
		return yaerrors.FromStringWithLog(http.StatusBadRequest, "mtproto proxy url has no port", log)
	case secret == "":
		return yaerrors.FromStringWithLog(http.StatusBadRequest, "mtproto proxy url has no secret", log)
	}

	port, err := parsePort(rawPort)
	if err != nil {
		return yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "failed to parse port for mtproto", log)
	}

	m.Host = host
	m.Port = uint16(port)
	m.Secret = secret

	return nil
}

func (m *MTProto) GetResolver(log yalogger.Logger) (dcs.Resolver, yaerrors.Error) {
	secret, err := hex.DecodeString(m.Secret)
	if err != nil {
		return nil, yaerrors.FromErrorWithLog(http.StatusBadRequest, err, "mtproto secret is not hex", log)
	}

	resolver, err := dcs.MTProxy(m.GetFullAddress(), secret, dcs.MTProxyOptions{})
	if err != nil {
		return nil, yaerrors.FromErrorWithLog(http.StatusInternalServerError, err, "failed to create mtproto resolver", log)
	}

	return resolver, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}

	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: %d", ErrPortOutOfRange, port)
	}

	return port, nil
}
