package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotService archives the engine's sqlite databases and ships them to
// object storage. Snapshots are tar.gz files named by timestamp; rotation
// keeps the newest keepCount.
type SnapshotService struct {
	client    *S3Client
	dataDir   string
	prefix    string
	keepCount int
	log       zerolog.Logger
}

// SnapshotMetadata describes the contents of one snapshot archive.
type SnapshotMetadata struct {
	Timestamp time.Time      `json:"timestamp"`
	Files     []FileMetadata `json:"files"`
}

// FileMetadata describes one database file in a snapshot.
type FileMetadata struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(client *S3Client, dataDir, prefix string, keepCount int, log zerolog.Logger) *SnapshotService {
	if keepCount < 1 {
		keepCount = 14
	}
	return &SnapshotService{
		client:    client,
		dataDir:   dataDir,
		prefix:    prefix,
		keepCount: keepCount,
		log:       log.With().Str("service", "snapshot").Logger(),
	}
}

// CreateAndUploadSnapshot archives every .db file in the data directory and
// uploads the archive, then rotates old snapshots.
func (s *SnapshotService) CreateAndUploadSnapshot(ctx context.Context) error {
	s.log.Info().Msg("Starting archive snapshot")
	startTime := time.Now()

	dbFiles, err := filepath.Glob(filepath.Join(s.dataDir, "*.db"))
	if err != nil {
		return fmt.Errorf("failed to scan data directory: %w", err)
	}
	if len(dbFiles) == 0 {
		s.log.Warn().Str("dir", s.dataDir).Msg("No database files to snapshot")
		return nil
	}

	archivePath := filepath.Join(s.dataDir, fmt.Sprintf("snapshot-%s.tar.gz", startTime.Format("2006-01-02-150405")))
	defer os.Remove(archivePath)

	if err := s.createArchive(archivePath, dbFiles, startTime); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	key := s.prefix + "/" + filepath.Base(archivePath)
	if err := s.client.Upload(ctx, key, archive); err != nil {
		return err
	}

	s.log.Info().
		Str("key", key).
		Int("databases", len(dbFiles)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Snapshot uploaded")

	return s.RotateSnapshots(ctx)
}

// RotateSnapshots deletes snapshots beyond the configured retention count.
func (s *SnapshotService) RotateSnapshots(ctx context.Context) error {
	objects, err := s.client.List(ctx, s.prefix+"/")
	if err != nil {
		return err
	}
	if len(objects) <= s.keepCount {
		return nil
	}

	for _, obj := range objects[s.keepCount:] {
		if !strings.HasSuffix(obj.Key, ".tar.gz") {
			continue
		}
		if err := s.client.Delete(ctx, obj.Key); err != nil {
			s.log.Warn().Err(err).Str("key", obj.Key).Msg("Failed to delete old snapshot")
			continue
		}
		s.log.Debug().Str("key", obj.Key).Msg("Rotated old snapshot")
	}
	return nil
}

// ListSnapshots returns stored snapshots, newest first.
func (s *SnapshotService) ListSnapshots(ctx context.Context) ([]ObjectInfo, error) {
	return s.client.List(ctx, s.prefix+"/")
}

func (s *SnapshotService) createArchive(archivePath string, files []string, timestamp time.Time) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	metadata := SnapshotMetadata{Timestamp: timestamp.UTC()}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		metadata.Files = append(metadata.Files, FileMetadata{
			Filename:  filepath.Base(path),
			SizeBytes: info.Size(),
		})

		header := &tar.Header{
			Name:    filepath.Base(path),
			Mode:    0644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}

	// Metadata last so a reader can verify what the archive should contain.
	payload, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	header := &tar.Header{
		Name:    "snapshot-metadata.json",
		Mode:    0644,
		Size:    int64(len(payload)),
		ModTime: timestamp,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = tw.Write(payload)
	return err
}
