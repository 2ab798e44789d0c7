package portal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/proxy"
)

// newTransport builds the transport the portal is reached through. With
// mimicTLS the handshake presents a Firefox ClientHello via uTLS and pins
// ALPN to HTTP/1.1: the stock Go handshake is a known bot signature to the
// portal's CDN. A non-empty proxyURL routes the TCP dial through a SOCKS5
// proxy. The portal pins sessions to their source address, so a single
// fixed proxy is supported but never a rotating pool.
func newTransport(mimicTLS bool, proxyURL string) (http.RoundTripper, error) {
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
	}

	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	dialTCP := func(ctx context.Context, network, addr string) (net.Conn, error) {
		if proxyURL == "" {
			return dialer.DialContext(ctx, network, addr)
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		socks, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		if cd, ok := socks.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return socks.Dial(network, addr)
	}

	t := &http.Transport{
		DialContext:         dialTCP,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if !mimicTLS {
		return t, nil
	}

	t.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialTCP(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		uconn := utls.UClient(conn, &utls.Config{
			ServerName: host,
			NextProtos: []string{"http/1.1"},
		}, utls.HelloCustom)

		spec, err := utls.UTLSIdToSpec(utls.HelloFirefox_Auto)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("tls fingerprint spec: %w", err)
		}
		// The transport above only speaks HTTP/1.1, so h2 must not be
		// offered in the ALPN extension either.
		for i, ext := range spec.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
				spec.Extensions[i] = alpn
			}
		}
		if err := uconn.ApplyPreset(&spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply tls preset: %w", err)
		}
		if err := uconn.Handshake(); err != nil {
			conn.Close()
			return nil, err
		}
		return uconn, nil
	}
	t.ForceAttemptHTTP2 = false
	return t, nil
}
