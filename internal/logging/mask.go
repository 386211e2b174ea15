// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It builds the structured logger used across the CLI, masks credentials and
// presigned URL signatures before they reach a log line, and formats errors for
// user-friendly display.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword  = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken     = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reAPIKey    = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
	reSignature = regexp.MustCompile(`(?i)((?:x-amz-signature|x-amz-credential|x-amz-security-token|signature|sig)=)([^&\s"]+)`)
)

// Mask replaces sensitive values in the input string with "***".
// Presigned URLs keep their host and path; only signing parameters are hidden.
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reSignature.ReplaceAllString(out, "$1***")
	for _, k := range []string{"SQLFERRY_API_TOKEN", "CLOUDFLARE_API_TOKEN"} {
		if i := strings.Index(out, k+"="); i >= 0 {
			end := strings.IndexAny(out[i+len(k)+1:], " \t\n")
			if end < 0 {
				out = out[:i] + k + "=***"
			} else {
				out = out[:i] + k + "=***" + out[i+len(k)+1+end:]
			}
		}
	}
	return out
}
