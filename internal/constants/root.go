package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

// BackendKind names a key-value storage backend
type BackendKind string

const (
	AppName            = "salonlux"
	DefaultKeyringUser = "database-connection"
	AdvisorKeyringUser = "advisor-api-key"
	DefaultConfigPath  = "~/.config/salonlux/config.yaml"
	Version            = "v0.1.0"

	// AppointmentsKey is the storage key holding the appointment snapshot
	AppointmentsKey = "salonlux_appointments_v1"

	// Operating hours and slot size
	DefaultOpeningHour  = 9
	DefaultClosingHour  = 19
	SlotDurationMinutes = 60
	DefaultBookingDays  = 7

	// Feedback
	FeedbackDelay         = 3 * time.Second
	BookingSuccessMessage = "Agendamento realizado com sucesso!"
	DeleteConfirmMessage  = "Tem certeza que deseja cancelar este agendamento?"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "salonlux-"
	BackupFileSuffix = ".json"

	// Lock constants
	LockfileName = "salonlux.lock"

	// Backend timeouts
	BackendTimeout = 5 * time.Second

	// Storage backends
	BackendFile     BackendKind = "file"
	BackendSQLite   BackendKind = "sqlite"
	BackendPostgres BackendKind = "postgres"
	BackendRedis    BackendKind = "redis"
)

// Session States
const (
	StateBooking SessionState = iota
	StateAdmin
	StateBookingForm
	StateConfirmDelete
)
