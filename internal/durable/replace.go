package durable

import (
	"errors"
	"io/fs"

	"go.uber.org/zap"
)

// replace moves the temp file over the final path. When a direct rename is
// refused it parks the current file as a backup, retries, and restores the
// backup if the retry fails too. A nil return means the final path holds
// the new content.
func (s *Store) replace(doc document) error {
	err := s.fs.Rename(doc.tempPath, doc.path)
	if err == nil {
		return nil
	}
	s.logger.Debug("direct rename refused, swapping through backup",
		zap.String("path", doc.path),
		zap.Error(err))

	targetExists, err := exists(s.fs, doc.path)
	if err != nil {
		s.logger.Error("check existing document before replace", zap.String("path", doc.path), zap.Error(err))
		s.removeQuietly(doc.tempPath)
		return &Error{Op: "stat", Path: doc.path, Err: err}
	}

	if targetExists {
		s.removeQuietly(doc.backupPath)
		if err := s.fs.Rename(doc.path, doc.backupPath); err != nil {
			s.logger.Error("move document to backup",
				zap.String("path", doc.path),
				zap.String("backup", doc.backupPath),
				zap.Error(err))
			s.removeQuietly(doc.tempPath)
			return &Error{Op: "backup", Path: doc.path, Err: err}
		}
	}

	if err := s.fs.Rename(doc.tempPath, doc.path); err != nil {
		s.logger.Error("replace document from temp",
			zap.String("path", doc.path),
			zap.String("temp", doc.tempPath),
			zap.Error(err))
		if targetExists {
			if restoreErr := s.fs.Rename(doc.backupPath, doc.path); restoreErr != nil {
				s.logger.Error("restore document from backup",
					zap.String("path", doc.path),
					zap.String("backup", doc.backupPath),
					zap.Error(restoreErr))
			}
		}
		s.removeQuietly(doc.tempPath)
		return &Error{Op: "rename", Path: doc.path, Err: err}
	}

	if targetExists {
		if err := s.fs.Remove(doc.backupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("remove document backup", zap.String("backup", doc.backupPath), zap.Error(err))
		}
	}
	return nil
}

func (s *Store) removeQuietly(path string) {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("remove leftover file", zap.String("path", path), zap.Error(err))
	}
}
