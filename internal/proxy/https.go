package proxy

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/iTrooz/response-cache/internal/config"

	"github.com/elazarl/goproxy"
	"github.com/sirupsen/logrus"
)

func loadCertificate(cfg *config.Config) (*tls.Certificate, error) {
	if cfg.Server.HTTPS.CACertFile == "" || cfg.Server.HTTPS.CAKeyFile == "" {
		logrus.Debugf("No CA certificate configured, using goproxy default certificate")
		return nil, nil // Use default goproxy certificate
	}

	cert, err := tls.LoadX509KeyPair(cfg.Server.HTTPS.CACertFile, cfg.Server.HTTPS.CAKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load CA certificate and key: %w", err)
	}
	logrus.Debugf("Loaded CA certificate from %s", cfg.Server.HTTPS.CACertFile)
	return &cert, nil
}

// setupHTTPSProxyHandler intercepts CONNECT tunnels to the upstream host only,
// so its response can be cached. Other hosts are tunneled untouched.
func (s *Server) setupHTTPSProxyHandler() error {
	caCert, err := loadCertificate(s.config)
	if err != nil {
		return err
	}

	mitm := goproxy.MitmConnect
	if caCert == nil {
		if s.rule.target.Scheme == "https" {
			logrus.Warnf("TLS interception of %s uses goproxy default certificate", s.rule.Host())
		}
	} else {
		mitm = &goproxy.ConnectAction{
			Action:    goproxy.ConnectMitm,
			TLSConfig: goproxy.TLSConfigFromCA(caCert),
		}
	}

	s.proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(func(host string, ctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
		return s.connectAction(host, mitm), host
	}))
	return nil
}

func (s *Server) connectAction(host string, mitm *goproxy.ConnectAction) *goproxy.ConnectAction {
	if s.rule.target.Scheme == "https" && strings.EqualFold(host, s.rule.Host()) {
		logrus.Debugf("Intercepting CONNECT request for %s", host)
		return mitm
	}
	return goproxy.OkConnect
}
