package index

import (
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
)

// Store is the relational index described in §3/§4.10: a single SQLite
// database (via the pure-Go glebarez/sqlite driver, no cgo) holding the
// FileRecord, FileBlock, BlockRecord, and ChunkRecord tables. The schema is
// created lazily on Open.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates the schema. All writes are durable on successful return, matching
// SQLite's default synchronous journal mode.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "opening index database", err)
	}

	if err := db.AutoMigrate(&FileRecord{}, &FileBlock{}, &BlockRecord{}, &ChunkRecord{}); err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "migrating index schema", err)
	}

	return &Store{db: db, log: log.With().Str("component", "index").Logger()}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "resolving underlying sql.DB", err)
	}
	if err := sqlDB.Close(); err != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "closing index database", err)
	}
	return nil
}

// InsertFile creates a new FileRecord together with its ordered FileBlock
// manifest rows in a single transaction. Re-uploading an existing path is a
// caller-level decision (I5 requires the path still be unique); callers that
// want replace-on-reupload semantics should DeleteFile first.
func (s *Store) InsertFile(file *FileRecord, blockFingerprints [][]byte) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return isgerr.Wrap(isgerr.CodeIndex, "inserting file record", err)
		}
		for i, fp := range blockFingerprints {
			fb := FileBlock{FileID: file.ID, Sequence: i, BlockFingerprint: fp}
			if err := tx.Create(&fb).Error; err != nil {
				return isgerr.Wrap(isgerr.CodeIndex, "inserting file block manifest row", err)
			}
		}
		return nil
	})
}

// GetFileByPath loads a FileRecord by its unique path, failing
// isgerr.CodeFileNotFound if no such file exists.
func (s *Store) GetFileByPath(path string) (*FileRecord, error) {
	var rec FileRecord
	err := s.db.Where("path = ?", path).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, isgerr.New(isgerr.CodeFileNotFound, "no file recorded at path "+path)
	}
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "loading file record", err)
	}
	return &rec, nil
}

// ListFiles returns every FileRecord in the index, ordered by path.
func (s *Store) ListFiles() ([]FileRecord, error) {
	var recs []FileRecord
	if err := s.db.Order("path").Find(&recs).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "listing file records", err)
	}
	return recs, nil
}

// DeleteFile removes a FileRecord and its manifest rows (FileBlock cascades
// on delete). It does not touch BlockRecord or ChunkRecord rows: blocks are
// content-addressed and may be shared by other files, so block/chunk
// garbage collection is a separate, deliberately unautomated concern (§3
// Lifecycle).
func (s *Store) DeleteFile(path string) error {
	res := s.db.Where("path = ?", path).Delete(&FileRecord{})
	if res.Error != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "deleting file record", res.Error)
	}
	if res.RowsAffected == 0 {
		return isgerr.New(isgerr.CodeFileNotFound, "no file recorded at path "+path)
	}
	return nil
}

// TouchAccessedAt updates a file's last-accessed timestamp in place, best
// effort: callers treat a failure here as non-fatal to the read that
// triggered it.
func (s *Store) TouchAccessedAt(fileID uint, at time.Time) error {
	res := s.db.Model(&FileRecord{}).Where("id = ?", fileID).Update("accessed_at", at)
	if res.Error != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "updating accessed_at", res.Error)
	}
	return nil
}

// GetFileBlocks returns the ordered manifest of block fingerprints for a
// file, resolving the single-block ambiguity flagged in §9: callers must
// walk this table rather than treat RootFingerprint as a block key.
func (s *Store) GetFileBlocks(fileID uint) ([][]byte, error) {
	var rows []FileBlock
	if err := s.db.Where("file_id = ?", fileID).Order("sequence").Find(&rows).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "loading file block manifest", err)
	}
	fps := make([][]byte, len(rows))
	for i, r := range rows {
		fps[i] = r.BlockFingerprint
	}
	return fps, nil
}

// InsertBlock inserts a BlockRecord, silently doing nothing if a row with
// the same fingerprint already exists (I4: blocks are write-once and
// content-addressed, so a duplicate insert is always a no-op, not an error).
func (s *Store) InsertBlock(rec *BlockRecord) error {
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
	if err != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "inserting block record", err)
	}
	return nil
}

// GetBlock loads a BlockRecord by fingerprint, failing
// isgerr.CodeBlockNotFound if absent.
func (s *Store) GetBlock(fingerprint []byte) (*BlockRecord, error) {
	var rec BlockRecord
	err := s.db.Where("fingerprint = ?", fingerprint).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, isgerr.New(isgerr.CodeBlockNotFound, "no block recorded for fingerprint")
	}
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "loading block record", err)
	}
	return &rec, nil
}

// InsertChunk records a single stored copy of a block at a platform-specific
// location. A BlockRecord with the same fingerprint must already exist (I3).
func (s *Store) InsertChunk(rec *ChunkRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return isgerr.Wrap(isgerr.CodeIndex, "inserting chunk record", err)
	}
	return nil
}

// GetChunksForBlock returns every ChunkRecord (storage copy) of a block,
// ordered by insertion (upload) order.
func (s *Store) GetChunksForBlock(fingerprint []byte) ([]ChunkRecord, error) {
	var rows []ChunkRecord
	if err := s.db.Where("block_fingerprint = ?", fingerprint).Order("id").Find(&rows).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "loading chunk records", err)
	}
	return rows, nil
}

// Stats summarizes the catalog for the `stats` CLI command: file count,
// total logical bytes, total stored bytes across all chunks, and a
// per-platform breakdown of stored bytes.
type Stats struct {
	FileCount        int
	TotalLogical     uint64
	TotalStored      int64
	StoredByPlatform map[string]int64
}

// ComputeStats derives a Stats summary purely from existing index rows; it
// introduces no new persisted state.
func (s *Store) ComputeStats() (*Stats, error) {
	var files []FileRecord
	if err := s.db.Find(&files).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "listing files for stats", err)
	}

	stats := &Stats{FileCount: len(files), StoredByPlatform: map[string]int64{}}
	for _, f := range files {
		stats.TotalLogical += f.Size
	}

	var blocks []BlockRecord
	if err := s.db.Find(&blocks).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "listing blocks for stats", err)
	}
	sizeByFingerprint := make(map[string]int, len(blocks))
	for _, b := range blocks {
		sizeByFingerprint[string(b.Fingerprint)] = b.Size
	}

	var chunks []ChunkRecord
	if err := s.db.Find(&chunks).Error; err != nil {
		return nil, isgerr.Wrap(isgerr.CodeIndex, "listing chunks for stats", err)
	}
	for _, c := range chunks {
		size := int64(sizeByFingerprint[string(c.BlockFingerprint)])
		stats.TotalStored += size
		stats.StoredByPlatform[c.Platform] += size
	}

	return stats, nil
}
