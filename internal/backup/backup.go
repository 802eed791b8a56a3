package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/logger"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/storage"
)

// ErrNothingToBackup is returned when the backend holds no snapshot yet.
var ErrNothingToBackup = errors.New("no appointment snapshot to back up")

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager copies the raw appointment snapshot to timestamped JSON files. It
// only reads the snapshot key; restores go through a Restorer.
type Manager struct {
	backend   storage.Backend
	key       string
	backupDir string
	now       func() time.Time
}

// NewManager keeps backups in <dataDir>/backups.
func NewManager(backend storage.Backend, key, dataDir string) *Manager {
	return &Manager{
		backend:   backend,
		key:       key,
		backupDir: filepath.Join(dataDir, constants.BackupDirName),
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes the current snapshot to a new backup file and prunes
// all but the newest MaxBackups.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// skipRotation keeps the pre-restore safety copy from evicting the backup
// being restored.
func (m *Manager) createBackup(ctx context.Context, skipRotation bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.BackendTimeout)
	defer cancel()

	data, err := m.backend.Get(ctx, m.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNothingToBackup
		}
		return "", errors.Wrap(err, "failed to read snapshot")
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create backup directory")
	}

	backupPath, err := m.uniquePath()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", errors.Wrap(err, "failed to write backup")
	}
	logger.Info("Backup created", "path", backupPath, "bytes", len(data))

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return backupPath, nil
}

// uniquePath uses minute precision, then seconds, then a counter.
func (m *Manager) uniquePath() (string, error) {
	now := m.now()
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	path := name(now.Format("20060102-1504"))
	if !exists(path) {
		return path, nil
	}

	stamp := now.Format("20060102-150405")
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListBackups returns backups sorted newest first. Files that do not follow
// the naming scheme are ignored.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, errors.Wrap(err, "failed to read backup directory")
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		timestamp, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseBackupName accepts salonlux-YYYYMMDD-HHMM[SS][-N].json.
func parseBackupName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	parts := strings.Split(stamp, "-")
	if len(parts) == 3 && isDigits(parts[2]) {
		stamp = parts[0] + "-" + parts[1]
	}

	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if t, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return errors.Wrapf(err, "failed to remove old backup %s", backups[i].Path)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// Restorer receives the appointments of a restored backup. *storage.Store
// implements it and is the only writer of the snapshot key.
type Restorer interface {
	Replace(ctx context.Context, appointments []models.Appointment) error
}

// RestoreBackup loads backupPath into dst and returns how many appointments
// it held. The file must decode as an appointment list with unique ids and
// slots. The current snapshot, if any, is backed up first.
func (m *Manager) RestoreBackup(ctx context.Context, backupPath string, dst Restorer) (int, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read backup %s", backupPath)
	}
	appointments, err := storage.DecodeSnapshot(data)
	if err != nil {
		return 0, errors.Wrap(err, "backup file is corrupted or invalid")
	}
	if err := storage.CheckUnique(appointments); err != nil {
		return 0, errors.WithHint(
			errors.Wrap(err, "backup holds conflicting appointments"),
			"run 'salonlux doctor' after fixing the file, or pick another backup",
		)
	}

	current, err := m.createBackup(ctx, true)
	switch {
	case err == nil:
		logger.Info("Backed up current snapshot before restore", "path", current)
	case errors.Is(err, ErrNothingToBackup):
	default:
		return 0, errors.Wrap(err, "failed to back up current snapshot before restore")
	}

	if err := dst.Replace(ctx, appointments); err != nil {
		return 0, errors.Wrap(err, "failed to restore snapshot")
	}
	return len(appointments), nil
}
