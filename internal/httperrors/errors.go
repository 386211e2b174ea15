// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures into troubleshooting text for the
// terminal. It classifies the error (timeout, DNS, refused, TLS, server) and
// prints hints for that class.
package httperrors

import (
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is the kind of network failure.
type Category string

const (
	Timeout Category = "timeout"
	DNS     Category = "dns"
	Refused Category = "refused"
	TLS     Category = "tls"
	Server  Category = "server"
	Generic Category = "generic"
)

// Classify detects the kind of network failure err represents.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Generic
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return Refused
	case isSSLError(err):
		return TLS
	case isServerError(err.Error()):
		return Server
	default:
		return Generic
	}
}

// Advice is the troubleshooting text for one failure.
type Advice struct {
	Headline string
	Hints    []string
}

// Advise builds troubleshooting text for err. action describes what was being
// done ("importing data.sql"); host names the server contacted.
func Advise(err error, action, host string) Advice {
	switch Classify(err) {
	case Timeout:
		return Advice{"⏱️  Connection timeout while " + action, []string{
			"Slow internet connection",
			"The service is under heavy load",
			"Network firewall is blocking the connection",
		}}
	case DNS:
		return Advice{"🌐 Cannot resolve server address while " + action, []string{
			"Unable to look up " + host + "; check your internet connection",
			"DNS settings are correct",
			"No DNS-level blocking (corporate firewall, parental controls)",
		}}
	case Refused:
		return Advice{"🚫 Connection refused while " + action, []string{
			"The service is temporarily down",
			"Firewall is blocking the connection",
			"Wrong api_base_url in your configuration",
		}}
	case TLS:
		return Advice{"🔒 Secure connection failed while " + action, []string{
			"Check your system date and time",
			"Verify network proxy settings",
		}}
	case Server:
		return Advice{"⚠️  Server error while " + action, []string{
			"This is not a problem with your setup",
			"Please try again in a few minutes",
			"Imports and exports keep running on the server; rerun the command to resume",
		}}
	default:
		return Advice{"❌ Cannot reach " + host + " while " + action, []string{
			"Your internet connection",
			"Whether " + host + " is accessible from your network",
			"Firewall settings that might block HTTPS requests",
		}}
	}
}

// Print writes troubleshooting text for err to w.
func Print(w io.Writer, err error, action, host string) {
	a := Advise(err, action, host)
	pterm.Fprintln(w, a.Headline)
	pterm.Fprintln(w)
	for _, h := range a.Hints {
		pterm.Fprintln(w, "  • "+h)
	}
	pterm.Fprintln(w)
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{"500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
