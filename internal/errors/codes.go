// Package errors provides structured error handling for wfkit.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (cache, data, settings files)
//   - 3XX: Network errors (update checks, downloads)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Keychain errors
package errors

// Category groups codes by their hundreds digit.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
	CategoryKeychain   Category = "KEYCHAIN"
)

// Severity tells Run how to present an error. Info-level errors are shown
// with the info icon instead of the error icon.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
	ErrCodeInfoPlist        = "ERR_104_INFO_PLIST"
	ErrCodeNoBundleID       = "ERR_105_NO_BUNDLE_ID"

	// IO errors (200-299)
	ErrCodeFileNotFound    = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission  = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull        = "ERR_203_DISK_FULL"
	ErrCodeFileCorrupt     = "ERR_204_FILE_CORRUPT"
	ErrCodeLockTimeout     = "ERR_205_LOCK_TIMEOUT"
	ErrCodeSettingsCorrupt = "ERR_206_SETTINGS_CORRUPT"
	ErrCodeFormatMismatch  = "ERR_207_FORMAT_MISMATCH"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeDownloadFailed     = "ERR_303_DOWNLOAD_FAILED"
	ErrCodeRateLimited        = "ERR_304_RATE_LIMITED"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidVersion = "ERR_402_INVALID_VERSION"
	ErrCodeInvalidQuery   = "ERR_403_INVALID_QUERY"
	ErrCodeInvalidRules   = "ERR_404_INVALID_RULES"
	ErrCodeInvalidRepo    = "ERR_405_INVALID_REPO"
	ErrCodeUnknownFormat  = "ERR_406_UNKNOWN_FORMAT"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeFilterFailed  = "ERR_502_FILTER_FAILED"
	ErrCodeNoUpdate      = "ERR_503_NO_UPDATE"
	ErrCodeInstallFailed = "ERR_504_INSTALL_FAILED"

	// Keychain errors (600-699)
	ErrCodeKeychainNotFound = "ERR_601_KEYCHAIN_NOT_FOUND"
	ErrCodeKeychainExists   = "ERR_602_KEYCHAIN_EXISTS"
	ErrCodeKeychainFailed   = "ERR_603_KEYCHAIN_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	case '6':
		return CategoryKeychain
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDiskFull, ErrCodeNoBundleID:
		return SeverityFatal
	case ErrCodeNoUpdate:
		return SeverityInfo
	}

	// Retryable network errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable, ErrCodeDownloadFailed, ErrCodeLockTimeout:
		return true
	default:
		return false
	}
}
