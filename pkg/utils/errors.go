package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrReachability     = errors.New("page reachability check failed") // Status >= 400 or connection failure on HEAD
	ErrExtraction       = errors.New("extraction service error")       // HTTP failure or missing response field
	ErrSitemapFetch     = errors.New("sitemap fetch error")            // HTTP or parse failure fetching a sitemap page
	ErrFilesystem       = errors.New("filesystem error")               // Wraps os errors
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrConfigValidation = errors.New("configuration validation error")
)

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrReachability):
		errMsg := err.Error()
		if strings.Contains(errMsg, "status 404") {
			return "Reachability_HTTP404"
		}
		if strings.Contains(errMsg, "status 4") {
			return "Reachability_HTTP4xx"
		}
		if strings.Contains(errMsg, "status 5") {
			return "Reachability_HTTP5xx"
		}
		return "Reachability_Connection"
	case errors.Is(err, ErrExtraction):
		errMsg := err.Error()
		if strings.Contains(errMsg, "field") {
			return "Extraction_MissingField"
		}
		if strings.Contains(errMsg, "status") {
			return "Extraction_HTTPStatus"
		}
		return "Extraction_Other"
	case errors.Is(err, ErrSitemapFetch):
		errMsg := err.Error()
		if strings.Contains(errMsg, "status 404") {
			return "Sitemap_HTTP404"
		}
		if strings.Contains(errMsg, "XML") {
			return "Sitemap_ParsingXML"
		}
		return "Sitemap_Other"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	case errors.Is(err, ErrResponseBodyRead):
		return "Network_BodyRead"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	// --- Fallback checks for common underlying error types/strings ---

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") {
		return "Network_TimeoutGeneric"
	}
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}
	if strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate") {
		return "Network_TLS"
	}
	if strings.Contains(lowerErrMsg, "reset by peer") {
		return "Network_ConnectionReset"
	}

	return "Unknown"
}
