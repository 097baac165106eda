package service

import (
	"context"
	"errors"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BackupService drives periodic backend backups and retention pruning.
// Backends without backup support surface a typed error; the periodic
// loop treats that as a configuration mistake and stops.
type BackupService struct {
	store     ports.Store
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

func NewBackupService(store ports.Store, interval, retention time.Duration, log zerolog.Logger) *BackupService {
	return &BackupService{
		store:     store,
		interval:  interval,
		retention: retention,
		log:       log.With().Str("component", "backup_service").Logger(),
	}
}

// Backup creates one backup immediately.
func (s *BackupService) Backup(ctx context.Context) (uuid.UUID, error) {
	return s.store.CreateBackup(ctx)
}

// Restore replaces live data from the named backup.
func (s *BackupService) Restore(ctx context.Context, backupID uuid.UUID) error {
	return s.store.RestoreBackup(ctx, backupID)
}

// Run backs up on the configured interval and prunes backups older than
// the retention window after every successful backup.
func (s *BackupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Dur("retention", s.retention).Msg("Backup loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Backup loop stopped")
			return
		case <-ticker.C:
			if !s.tick(ctx) {
				return
			}
		}
	}
}

func (s *BackupService) tick(ctx context.Context) bool {
	id, err := s.store.CreateBackup(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrUnsupported("", "")) {
			s.log.Error().Msg("Backend has no backup support, backup loop disabled")
			return false
		}
		s.log.Error().Err(err).Msg("Backup failed")
		return true
	}
	s.log.Info().Str("backup_id", id.String()).Msg("Backup created")

	if s.retention > 0 {
		if _, err := s.store.PruneBackups(ctx, s.retention); err != nil {
			s.log.Warn().Err(err).Msg("Backup pruning failed")
		}
	}
	return true
}
