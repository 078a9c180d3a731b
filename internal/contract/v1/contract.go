// Package v1 is the wire contract of the vault service: method names, field
// keys and the request and response messages. Server and client both build
// on it, so a field is renamed here or nowhere.
package v1

import "time"

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "glider.vault.v1.VaultService"

// Method names.
const (
	MethodPing             = "Ping"
	MethodInsertPassword   = "InsertPassword"
	MethodGeneratePassword = "GeneratePassword"
	MethodRefreshPassword  = "RefreshPassword"
	MethodEditPassword     = "EditPassword"
	MethodCopyPassword     = "CopyPassword"
	MethodGetPassword      = "GetPassword"
	MethodListPasswords    = "ListPasswords"
	MethodDeletePassword   = "DeletePassword"
	MethodHistory          = "History"
	MethodListDevices      = "ListDevices"
	MethodDisconnectDevice = "DisconnectDevice"
	MethodArchiveVault     = "ArchiveVault"
)

// FullMethod returns "/glider.vault.v1.VaultService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Stable field keys. The struct tags below use the same strings.
const (
	FieldSessionID              = "session_id"
	FieldDeviceID               = "device_id"
	FieldPasswordID             = "password_id"
	FieldTail                   = "tail"
	FieldScopes                 = "scopes"
	FieldSecret                 = "secret"
	FieldPasswordConfigurations = "password_configurations"
	FieldLength                 = "length"
	FieldIncludeNumbers         = "include_numbers"
	FieldIncludeUppercase       = "include_uppercase_letters"
	FieldIncludeSpecial         = "include_special_characters"
	FieldPasswordEvents         = "password_events"
	FieldEventDate              = "event_date"
	FieldType                   = "type"
	FieldDevices                = "devices"
	FieldBrand                  = "brand"
	FieldModel                  = "model"
	FieldBrowser                = "browser"
	FieldLastLogin              = "last_login"
	FieldPassphrase             = "passphrase"
)

type PasswordConfiguration struct {
	Length                   int  `json:"length"`
	IncludeNumbers           bool `json:"include_numbers"`
	IncludeUppercaseLetters  bool `json:"include_uppercase_letters"`
	IncludeSpecialCharacters bool `json:"include_special_characters"`
}

// Password is a keychain item. Secret is empty unless the caller asked for
// it.
type Password struct {
	PasswordID    string                `json:"password_id"`
	Type          string                `json:"type"`
	Tail          string                `json:"tail"`
	Scopes        *string               `json:"scopes,omitempty"`
	Secret        string                `json:"secret,omitempty"`
	Configuration PasswordConfiguration `json:"password_configurations"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     *time.Time            `json:"deleted_at,omitempty"`
}

type PasswordEvent struct {
	EventID    string    `json:"event_id"`
	PasswordID string    `json:"password_id"`
	DeviceID   string    `json:"device_id"`
	Type       string    `json:"type"`
	EventDate  time.Time `json:"event_date"`
}

type Device struct {
	DeviceID  string    `json:"device_id"`
	Type      string    `json:"type"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Browser   string    `json:"browser"`
	LastLogin time.Time `json:"last_login"`
	Active    bool      `json:"active"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type InsertPasswordRequest struct {
	Tail          string                 `json:"tail"`
	Scopes        *string                `json:"scopes,omitempty"`
	Secret        string                 `json:"secret"`
	Configuration *PasswordConfiguration `json:"password_configurations,omitempty"`
}

type GeneratePasswordRequest struct {
	Tail          string                `json:"tail"`
	Scopes        *string               `json:"scopes,omitempty"`
	Configuration PasswordConfiguration `json:"password_configurations"`
}

type GeneratePasswordResponse struct {
	PasswordID string `json:"password_id"`
	Secret     string `json:"secret"`
}

// PasswordIDRequest addresses a single password.
type PasswordIDRequest struct {
	PasswordID string `json:"password_id"`
}

type PasswordIDResponse struct {
	PasswordID string `json:"password_id"`
}

type SecretResponse struct {
	Secret string `json:"secret"`
}

// EditPasswordRequest changes only the fields that are present. An empty
// Scopes string clears the scopes.
type EditPasswordRequest struct {
	PasswordID string  `json:"password_id"`
	Tail       *string `json:"tail,omitempty"`
	Scopes     *string `json:"scopes,omitempty"`
	Secret     *string `json:"secret,omitempty"`
}

// ListPasswordsRequest pages are numbered from 1; zero means the first page.
type ListPasswordsRequest struct {
	Keywords       []string `json:"keywords,omitempty"`
	Types          []string `json:"types,omitempty"`
	Page           int      `json:"page,omitempty"`
	PageSize       int      `json:"page_size,omitempty"`
	IncludeSecrets bool     `json:"include_secrets,omitempty"`
}

type ListPasswordsResponse struct {
	Passwords []Password `json:"passwords"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	Total     int        `json:"total"`
}

type GetPasswordResponse struct {
	Password Password `json:"password"`
}

type HistoryResponse struct {
	Events []PasswordEvent `json:"password_events"`
}

type ListDevicesRequest struct{}

type ListDevicesResponse struct {
	Devices []Device `json:"devices"`
}

type DisconnectDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// ArchiveVaultRequest carries the passphrase the archive is sealed under.
// The server does not keep it.
type ArchiveVaultRequest struct {
	Passphrase string `json:"passphrase"`
}

type ArchiveVaultResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ArchiveContents is the plaintext of a sealed vault archive.
type ArchiveContents struct {
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Passwords []Password `json:"passwords"`
}

type Empty struct{}
