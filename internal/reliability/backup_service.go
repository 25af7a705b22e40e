package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/database"
)

const backupPrefix = "cartera-backup-"

// BackupService snapshots the databases into a tar.gz archive with checksum
// metadata and optionally uploads it to object storage. Database copies use
// VACUUM INTO, which is safe against concurrent writers.
type BackupService struct {
	databases []*database.DB
	storage   *StorageClient // nil means local-only backups
	dataDir   string
	keep      int
	log       zerolog.Logger
}

// BackupMetadata describes one archive.
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes one database file inside an archive.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo summarizes a stored archive.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// NewBackupService creates a backup service over the given databases.
// storage may be nil; archives then stay under dataDir/backups.
func NewBackupService(databases []*database.DB, storage *StorageClient, dataDir string, keep int, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		storage:   storage,
		dataDir:   dataDir,
		keep:      keep,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUpload takes one backup pass: snapshot each database, archive
// with metadata, then upload and rotate if storage is configured.
func (s *BackupService) CreateAndUpload(ctx context.Context) error {
	start := time.Now()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp: start.UTC(),
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	var files []string
	for _, db := range s.databases {
		snapshotPath := filepath.Join(stagingDir, db.Name()+".db")

		if err := s.snapshotDatabase(db, snapshotPath); err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}

		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s snapshot: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  db.Name() + ".db",
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, snapshotPath)
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataPath)

	archiveName := fmt.Sprintf("%s%s.tar.gz", backupPrefix, start.Format("2006-01-02-150405"))

	localDir := filepath.Join(s.dataDir, "backups")
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	archivePath := filepath.Join(localDir, archiveName)

	if err := createArchive(archivePath, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	if s.storage != nil {
		archiveFile, err := os.Open(archivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archiveFile.Close()

		if err := s.storage.Upload(ctx, archiveName, archiveFile); err != nil {
			return fmt.Errorf("failed to upload backup: %w", err)
		}

		if err := s.RotateOldBackups(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Backup rotation failed")
		}
	}

	s.log.Info().
		Dur("duration_ms", time.Since(start)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Bool("uploaded", s.storage != nil).
		Msg("Backup completed")

	return nil
}

// ListBackups lists remote archives, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	if s.storage == nil {
		return nil, nil
	}

	objects, err := s.storage.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := *obj.Key
		if !strings.HasSuffix(filename, ".tar.gz") {
			continue
		}

		stampStr := strings.TrimSuffix(strings.TrimPrefix(filename, backupPrefix), ".tar.gz")
		timestamp, err := time.Parse("2006-01-02-150405", stampStr)
		if err != nil {
			s.log.Warn().Str("filename", filename).Msg("Unparseable backup filename")
			continue
		}

		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}

		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: size,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes remote archives beyond the retention count.
func (s *BackupService) RotateOldBackups(ctx context.Context) error {
	if s.storage == nil || s.keep <= 0 {
		return nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}

	deleted := 0
	for i, backup := range backups {
		if i < s.keep {
			continue
		}
		if err := s.storage.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().
			Int("deleted", deleted).
			Int("kept", len(backups)-deleted).
			Msg("Rotated old backups")
	}

	return nil
}

// snapshotDatabase copies a live database to destPath via VACUUM INTO.
func (s *BackupService) snapshotDatabase(db *database.DB, destPath string) error {
	// Fold outstanding WAL frames into the main file before copying
	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		s.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint before snapshot failed")
	}

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("vacuum into failed: %w", err)
	}

	return nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func createArchive(archivePath string, files []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, path := range files {
		if err := addFileToArchive(tarWriter, path); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filepath.Base(path), err)
		}
	}

	return nil
}

func addFileToArchive(tarWriter *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if _, err := io.Copy(tarWriter, file); err != nil {
		return err
	}

	return nil
}
