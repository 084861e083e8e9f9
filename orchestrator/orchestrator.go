// Package orchestrator composes the hash, block, Merkle, crypto, erasure,
// codec, storage, and index layers into the two transactions an operator
// actually drives: uploading a file and downloading it back. It is the
// "glue" layer described in §4.11 — no new cryptography or wire format lives
// here, only the ordering and bookkeeping that binds the others together.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/lessuseless-systems/infinite-storage-glitch/block"
	"github.com/lessuseless-systems/infinite-storage-glitch/build"
	"github.com/lessuseless-systems/infinite-storage-glitch/codec"
	"github.com/lessuseless-systems/infinite-storage-glitch/compress"
	"github.com/lessuseless-systems/infinite-storage-glitch/crypto"
	"github.com/lessuseless-systems/infinite-storage-glitch/erasure"
	"github.com/lessuseless-systems/infinite-storage-glitch/file"
	"github.com/lessuseless-systems/infinite-storage-glitch/index"
	"github.com/lessuseless-systems/infinite-storage-glitch/isgerr"
	"github.com/lessuseless-systems/infinite-storage-glitch/storage"
)

// Encoding names the pluggable codec layer an upload may run its bytes
// through before splitting into blocks. "none" performs no transform.
type Encoding string

const (
	EncodingNone    Encoding = "none"
	EncodingPixel   Encoding = "pixel"
	EncodingColor   Encoding = "color"
	EncodingBarcode Encoding = "qr"
)

// DefaultBlockSize is the default split size for an upload's post-transform
// buffer (§4.11 step 3): 1 MiB.
const DefaultBlockSize = 1 << 20

// UploadOptions configures a single upload transaction.
type UploadOptions struct {
	// Encrypt, if true, wraps the buffer in AEAD keyed by a password-derived
	// key before any codec runs (§4.11 step 1).
	Encrypt  bool
	Password string

	// Compress, if true, zstd-compresses the buffer before encryption (the
	// supplemented pipeline stage of SPEC_FULL.md; compressing ciphertext is
	// pointless, so compression always precedes encryption).
	Compress bool

	// Encoding selects the pluggable visual codec run after encryption,
	// before splitting into blocks (§4.11 step 2). EncodingNone/"" skips it.
	Encoding Encoding

	// BlockSize overrides DefaultBlockSize for the post-transform split.
	BlockSize int

	// DataShards/ParityShards, when both > 0, erasure-code each block into
	// DataShards+ParityShards shards, uploading each as its own chunk
	// (the supplemented feature wiring §4.5 into the transaction).
	DataShards   int
	ParityShards int

	// BackendIndex selects which dispatcher-held backend receives data
	// shards/whole blocks; defaults to 0.
	BackendIndex int

	// Progress, if non-nil, is advanced by one unit per block processed.
	Progress *progressbar.ProgressBar
}

// DownloadOptions configures a single download transaction.
type DownloadOptions struct {
	Password string
	Progress *progressbar.ProgressBar
}

// Orchestrator composes the index and a storage dispatcher into upload and
// download transactions.
type Orchestrator struct {
	store      *index.Store
	dispatcher *storage.Dispatcher
	log        zerolog.Logger
}

// New returns an Orchestrator over the given index and dispatcher.
func New(store *index.Store, dispatcher *storage.Dispatcher, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: store, dispatcher: dispatcher, log: log.With().Str("component", "orchestrator").Logger()}
}

func encodingName(e Encoding) string {
	if e == "" {
		return string(EncodingNone)
	}
	return string(e)
}

// Codec is the shared interface of the three visual codecs in package
// codec, letting Upload/Download treat whichever one was selected
// uniformly.
type Codec interface {
	Encode([]byte) ([]byte, error)
	Decode([]byte) ([]byte, error)
}

func codecFor(e Encoding) (Codec, error) {
	switch e {
	case EncodingNone, "":
		return nil, nil
	case EncodingPixel:
		return codec.NewPixelCodec(), nil
	case EncodingColor:
		return codec.NewColorCodec(), nil
	case EncodingBarcode:
		return codec.NewBarcodeCodec(), nil
	default:
		return nil, isgerr.New(isgerr.CodeConfig, "unknown encoding "+string(e))
	}
}

// Upload runs the upload transaction of §4.11: optional compress, optional
// encrypt, optional codec transform, split into blocks, and for each block
// persist a BlockRecord, dispatch the bytes (or erasure shards) to storage,
// and persist ChunkRecords — finally writing a FileRecord with the ordered
// block manifest and Merkle root.
//
// Per §5's ordering guarantee, blocks are processed strictly in sequence:
// block i's chunk rows are committed before block i+1 begins, so the
// manifest index can always be reconstructed from insertion order even
// though the index itself stores an explicit sequence number.
func (o *Orchestrator) Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (*file.File, error) {
	originalSize := uint64(len(data))
	buf := data

	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, isgerr.Wrap(isgerr.CodeCryptoKDF, "generating per-file salt", err)
	}

	if opts.Compress {
		buf, err = compress.Compress(buf)
		if err != nil {
			return nil, err
		}
	}

	if opts.Encrypt {
		key, err := crypto.DeriveKey(opts.Password, salt)
		if err != nil {
			return nil, isgerr.Wrap(isgerr.CodeCryptoKDF, "deriving encryption key", err)
		}
		ct, err := key.Seal(buf)
		if err != nil {
			return nil, isgerr.Wrap(isgerr.CodeCryptoIntegrity, "encrypting upload buffer", err)
		}
		buf = ct
	}

	c, err := codecFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if c != nil {
		buf, err = c.Encode(buf)
		if err != nil {
			return nil, err
		}
	}

	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	var erasureCoder *erasure.Coder
	if opts.DataShards > 0 && opts.ParityShards > 0 {
		erasureCoder, err = erasure.New(opts.DataShards, opts.ParityShards)
		if err != nil {
			return nil, err
		}
	}

	chunks := splitIntoChunks(buf, blockSize)
	fingerprints := make([]crypto.Fingerprint, 0, len(chunks))

	for _, chunkBytes := range chunks {
		fp, err := o.uploadBlock(ctx, chunkBytes, opts, erasureCoder)
		if err != nil {
			return nil, err
		}
		fingerprints = append(fingerprints, fp)
		if opts.Progress != nil {
			_ = opts.Progress.Add(1)
		}
	}

	meta := file.NewMetadata(originalSize)
	f := file.New(path, fingerprints, meta)

	rawFPs := make([][]byte, len(fingerprints))
	for i, fp := range fingerprints {
		cp := fp
		rawFPs[i] = cp[:]
	}

	now := time.Now().UTC()
	rec := &index.FileRecord{
		Path:            path,
		RootFingerprint: f.RootFingerprint[:],
		Salt:            salt,
		Size:            originalSize,
		CreatedAt:       now,
		ModifiedAt:      now,
		AccessedAt:      now,
	}
	if err := o.store.InsertFile(rec, rawFPs); err != nil {
		return nil, err
	}

	o.log.Info().Str("path", path).Uint64("size", originalSize).Int("blocks", len(chunks)).Msg("upload complete")
	return f, nil
}

// uploadBlock persists and dispatches a single post-split chunk, optionally
// erasure-coding it into N+K shards first. It returns the fingerprint of the
// *unencoded* chunk bytes, which is what the file manifest and the
// BlockRecord are keyed on — shards are an internal storage-layer detail,
// not separate blocks in the content-addressed sense.
func (o *Orchestrator) uploadBlock(ctx context.Context, data []byte, opts UploadOptions, coder *erasure.Coder) (crypto.Fingerprint, error) {
	desc := block.NewDescriptor()
	desc.Encoding = encodingName(opts.Encoding)
	if opts.Compress {
		desc.Compression = compress.Name
	}
	if opts.Encrypt {
		desc.Encryption = "aes-256-gcm"
	}

	b := block.New(data, desc)

	blockRec := &index.BlockRecord{
		Fingerprint: b.Fingerprint[:],
		Size:        b.Size,
		Encoding:    desc.Encoding,
		Compression: desc.Compression,
		IsParity:    false,
		CreatedAt:   desc.CreatedAt,
	}
	if err := o.store.InsertBlock(blockRec); err != nil {
		return b.Fingerprint, err
	}

	if coder == nil {
		loc, err := o.dispatcher.UploadTo(ctx, opts.BackendIndex, b)
		if err != nil {
			return b.Fingerprint, err
		}
		chunkRec := &index.ChunkRecord{
			BlockFingerprint: b.Fingerprint[:],
			Platform:         loc.Platform,
			Identifier:       loc.Identifier,
			IsParity:         false,
			UploadedAt:       loc.Metadata.UploadedAt,
		}
		return b.Fingerprint, o.store.InsertChunk(chunkRec)
	}

	shards, err := coder.Encode(data)
	if err != nil {
		return b.Fingerprint, err
	}
	// Every shard is attempted even after an earlier one fails, so a caller
	// sees every backend that rejected this block rather than only the
	// first; the shard errors are composed into a single message the same
	// way the teacher's own build.ComposeErrors is used to summarize
	// multiple independent failures as one.
	var shardErrs []error
	for i, shard := range shards {
		isParity := i >= coder.DataShards()
		shardDesc := desc
		shardDesc.IsParity = isParity
		shardBlock := block.New(shard, shardDesc)

		loc, err := o.dispatcher.UploadTo(ctx, opts.BackendIndex, shardBlock)
		if err != nil {
			shardErrs = append(shardErrs, build.ExtendErr(fmt.Sprintf("shard %d upload", i), err))
			continue
		}
		chunkRec := &index.ChunkRecord{
			BlockFingerprint: b.Fingerprint[:],
			Platform:         loc.Platform,
			Identifier:       loc.Identifier,
			IsParity:         isParity,
			UploadedAt:       loc.Metadata.UploadedAt,
		}
		if err := o.store.InsertChunk(chunkRec); err != nil {
			shardErrs = append(shardErrs, build.ExtendErr(fmt.Sprintf("shard %d chunk record", i), err))
		}
	}
	if composed := build.ComposeErrors(shardErrs...); composed != nil {
		return b.Fingerprint, composed
	}
	return b.Fingerprint, nil
}

// Download runs the download transaction of §4.11: load the FileRecord and
// its ordered block manifest, fetch (and, if erasure-coded, reconstruct)
// each block's bytes, invert any codec transform, then decrypt if a
// password was supplied.
func (o *Orchestrator) Download(ctx context.Context, path string, opts DownloadOptions) ([]byte, error) {
	rec, err := o.store.GetFileByPath(path)
	if err != nil {
		return nil, err
	}

	fpBytes, err := o.store.GetFileBlocks(rec.ID)
	if err != nil {
		return nil, err
	}

	var buf []byte
	var blockEncoding string
	var blockCompression string
	for _, fp := range fpBytes {
		blockRec, err := o.store.GetBlock(fp)
		if err != nil {
			return nil, err
		}
		blockEncoding = blockRec.Encoding
		blockCompression = blockRec.Compression

		chunks, err := o.store.GetChunksForBlock(fp)
		if err != nil {
			return nil, err
		}

		data, err := o.downloadBlockBytes(ctx, chunks, blockRec.Size)
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)

		if opts.Progress != nil {
			_ = opts.Progress.Add(1)
		}
	}

	if blockEncoding != "" && blockEncoding != string(EncodingNone) {
		c, err := codecFor(Encoding(blockEncoding))
		if err != nil {
			return nil, err
		}
		if c != nil {
			buf, err = c.Decode(buf)
			if err != nil {
				return nil, err
			}
		}
	}

	if opts.Password != "" {
		key, err := crypto.DeriveKey(opts.Password, rec.Salt)
		if err != nil {
			return nil, isgerr.Wrap(isgerr.CodeCryptoKDF, "deriving decryption key", err)
		}
		plain, err := key.Open(crypto.Ciphertext(buf))
		if err != nil {
			return nil, isgerr.Wrap(isgerr.CodeCryptoIntegrity, "decrypting downloaded buffer", err)
		}
		buf = plain
	}

	if blockCompression == compress.Name {
		buf, err = compress.Decompress(buf)
		if err != nil {
			return nil, err
		}
	}

	if err := o.store.TouchAccessedAt(rec.ID, time.Now().UTC()); err != nil {
		o.log.Warn().Err(err).Str("path", path).Msg("failed to update accessed_at")
	}
	o.log.Info().Str("path", path).Int("bytes", len(buf)).Msg("download complete")
	return buf, nil
}

// downloadBlockBytes fetches every chunk of a block and, if any chunk is
// parity-tagged (i.e. the block was erasure-coded), reconstructs
// the original block bytes from whichever shards are available rather than
// assuming a single plain copy.
func (o *Orchestrator) downloadBlockBytes(ctx context.Context, chunks []index.ChunkRecord, blockSize int) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, isgerr.New(isgerr.CodeBlockNotFound, "block has no recorded chunks")
	}

	hasParity := false
	for _, c := range chunks {
		if c.IsParity {
			hasParity = true
			break
		}
	}
	if !hasParity {
		return o.downloadFirstAvailable(ctx, chunks)
	}

	dataShards := 0
	for _, c := range chunks {
		if !c.IsParity {
			dataShards++
		}
	}
	parityShards := len(chunks) - dataShards
	coder, err := erasure.New(dataShards, parityShards)
	if err != nil {
		return nil, err
	}

	shards := make([][]byte, len(chunks))
	for i, c := range chunks {
		loc := block.Location{Platform: c.Platform, Identifier: c.Identifier}
		data, err := o.dispatcher.Download(ctx, loc)
		if err != nil {
			o.log.Warn().Err(err).Str("platform", c.Platform).Msg("shard fetch failed, treating as missing")
			continue
		}
		shards[i] = data
	}

	return coder.Reconstruct(shards, blockSize)
}

// downloadFirstAvailable returns the bytes of the first chunk that
// successfully downloads, trying subsequent chunks (additional storage
// copies of the same block) on failure.
func (o *Orchestrator) downloadFirstAvailable(ctx context.Context, chunks []index.ChunkRecord) ([]byte, error) {
	var lastErr error
	for _, c := range chunks {
		loc := block.Location{Platform: c.Platform, Identifier: c.Identifier}
		data, err := o.dispatcher.Download(ctx, loc)
		if err == nil {
			return data, nil
		}
		lastErr = err
		o.log.Warn().Err(err).Str("platform", c.Platform).Msg("chunk copy unavailable, trying next")
	}
	return nil, lastErr
}

// Delete removes a file's catalog entry and best-effort deletes every
// backing chunk from its owning backend. Backend deletion failures are
// composed into a single logged warning and never fail the overall
// operation (§7: "nothing is silently swallowed except backend
// deletion failures"); this corrects the source's delete command, which the
// design notes flag as actually performing a download.
func (o *Orchestrator) Delete(ctx context.Context, path string) error {
	rec, err := o.store.GetFileByPath(path)
	if err != nil {
		return err
	}

	fpBytes, err := o.store.GetFileBlocks(rec.ID)
	if err != nil {
		return err
	}

	var deleteErrs []error
	for _, fp := range fpBytes {
		chunks, err := o.store.GetChunksForBlock(fp)
		if err != nil {
			return err
		}
		for _, c := range chunks {
			loc := block.Location{Platform: c.Platform, Identifier: c.Identifier}
			if err := o.dispatcher.Delete(ctx, loc); err != nil {
				deleteErrs = append(deleteErrs, err)
			}
		}
	}
	if composed := build.JoinErrors(deleteErrs, "; "); composed != nil {
		o.log.Warn().Err(composed).Str("path", path).Msg("best-effort chunk deletes failed, file record still removed")
	}

	return o.store.DeleteFile(path)
}

// splitIntoChunks divides data into blockSize-byte chunks, the final chunk
// possibly shorter. An empty input still yields a single (empty) chunk so
// that zero-byte files still produce one block and a valid manifest.
func splitIntoChunks(data []byte, blockSize int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for i := 0; i < len(data); i += blockSize {
		end := i + blockSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[i:end])
	}
	return chunks
}
